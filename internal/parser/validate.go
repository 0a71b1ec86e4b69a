package parser

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var configOnce sync.Once

// headerWindow is how far into the file the %PDF- marker may appear.
const headerWindow = 1024

// Validate checks that data is a structurally valid PDF and returns the
// number of pages it declares.
func Validate(data []byte) (pages int, err error) {
	head := data
	if len(head) > headerWindow {
		head = head[:headerWindow]
	}
	if !bytes.Contains(head, []byte("%PDF-")) {
		return 0, ErrNotPDF
	}

	configOnce.Do(api.DisableConfigDir)

	defer func() {
		if r := recover(); r != nil {
			pages = 0
			err = fmt.Errorf("%w: %v", ErrInvalidPDF, r)
		}
	}()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}
	return ctx.PageCount, nil
}
