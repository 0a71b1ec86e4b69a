package outline

import "strings"

// DocType is the coarse category of a document, scored from keyword hits.
type DocType int

const (
	Ticket DocType = iota
	Form
	Invoice
	Receipt
	Certificate
	numDocTypes
)

var docTypeNames = [numDocTypes]string{"ticket", "form", "invoice", "receipt", "certificate"}

var docTypeKeywords = [numDocTypes][]string{
	Ticket:      {"e-ticket", "pnr", "fare summary", "flight", "departure", "booking id"},
	Form:        {"service book", "signature", "designation", "date", "name of the"},
	Invoice:     {"invoice", "subtotal", "tax", "total amount", "bill to"},
	Receipt:     {"transaction id", "payment method", "paid", "amount", "receipt"},
	Certificate: {"successfully completed", "certificate", "participation", "appreciation", "future endeavors"},
}

func (t DocType) String() string {
	if t < 0 || t >= numDocTypes {
		return "unknown"
	}
	return docTypeNames[t]
}

// Classification is the winning document type and its share of all hits.
type Classification struct {
	Type       DocType
	Confidence float64
	Scores     [numDocTypes]int
}

// ClassifyDocument counts keyword hits per category over the lowercased
// text. The highest count wins; ties go to the earlier category.
func ClassifyDocument(text string) Classification {
	lower := strings.ToLower(text)
	var c Classification
	total := 0
	for t := DocType(0); t < numDocTypes; t++ {
		for _, kw := range docTypeKeywords[t] {
			if strings.Contains(lower, kw) {
				c.Scores[t]++
			}
		}
		total += c.Scores[t]
		if c.Scores[t] > c.Scores[c.Type] {
			c.Type = t
		}
	}
	c.Confidence = float64(c.Scores[c.Type]) / float64(max(1, total))
	return c
}
