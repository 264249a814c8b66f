package export

import (
	"errors"
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/page"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

const (
	pageMarginMm = 4
	// Usable height on an A4 landscape page (210mm) inside the margins.
	imageRowHeightMm = 200
)

// MarotoAssembler builds A4-landscape PDF documents, one captured page image
// per PDF page.
type MarotoAssembler struct{}

// NewMarotoAssembler returns a MarotoAssembler.
func NewMarotoAssembler() *MarotoAssembler {
	return &MarotoAssembler{}
}

// Assemble places each PNG on its own page, centered and scaled to fit, and
// returns the finished PDF bytes.
func (a *MarotoAssembler) Assemble(pages [][]byte) ([]byte, error) {
	if len(pages) == 0 {
		return nil, errors.New("no pages to assemble")
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithOrientation(orientation.Horizontal).
		WithLeftMargin(pageMarginMm).
		WithTopMargin(pageMarginMm).
		WithRightMargin(pageMarginMm).
		Build()

	m := maroto.New(cfg)

	for _, png := range pages {
		p := page.New()
		p.Add(
			row.New(imageRowHeightMm).Add(
				image.NewFromBytesCol(12, png, extension.Png, props.Rect{
					Center:  true,
					Percent: 100,
				}),
			),
		)
		m.AddPages(p)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generating PDF: %w", err)
	}
	return doc.GetBytes(), nil
}
