package outline

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// One detector for the package; building it loads every model.
var (
	linguaOnce sync.Once
	linguaDet  *LinguaDetector
)

func sharedLingua() *LinguaDetector {
	linguaOnce.Do(func() { linguaDet = NewLinguaDetector() })
	return linguaDet
}

func TestLinguaDetector(t *testing.T) {
	d := sharedLingua()
	assert.Equal(t, "en", d.Detect("The quarterly report describes the results of the field study and the methods used to collect the data."))
	assert.Equal(t, UnknownLanguage, d.Detect("   "))
}

func TestLinguaDetector_HindiDisablesLatinRules(t *testing.T) {
	d := sharedLingua()
	lang := d.Detect("यह रिपोर्ट क्षेत्र अध्ययन के परिणामों और डेटा एकत्र करने के तरीकों का वर्णन करती है।")
	require.Equal(t, "hi", lang)
	assert.False(t, latinLanguages[lang])

	ctx := testContext(lang)
	dec := Classify(line("lowercase ending.", 1, 16), ctx, DefaultRules)
	assert.Equal(t, KindHeading, dec.Kind)
	assert.Equal(t, "lowercase ending.", dec.Text)
}

func TestLinguaDetector_ConcurrentUse(t *testing.T) {
	d := sharedLingua()
	texts := []string{
		"The committee approved the budget for the next fiscal year after a long debate.",
		"Le comité a approuvé le budget pour la prochaine année après un long débat.",
		"Der Ausschuss hat den Haushalt für das nächste Jahr nach langer Debatte genehmigt.",
	}
	want := []string{"en", "fr", "de"}

	var wg sync.WaitGroup
	got := make([]string, 3*len(texts))
	for i := range got {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got[i] = d.Detect(texts[i%len(texts)])
		}()
	}
	wg.Wait()
	for i, g := range got {
		assert.Equal(t, want[i%len(want)], g, texts[i%len(texts)])
	}
}

func TestFixedLanguage(t *testing.T) {
	assert.Equal(t, "de", FixedLanguage("de").Detect("anything"))
}
