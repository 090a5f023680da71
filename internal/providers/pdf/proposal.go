// Package pdf renders shared proposals into downloadable documents.
package pdf

import (
	"context"
	"fmt"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
	bomdomain "github.com/smallbiznis/specbook/internal/bom/domain"
	"go.uber.org/fx"
)

// Renderer produces the proposal PDF from the marked-up quote.
type Renderer interface {
	RenderProposal(ctx context.Context, proposal *bomdomain.Proposal) ([]byte, error)
}

type marotoRenderer struct{}

func New() Renderer {
	return &marotoRenderer{}
}

func (r *marotoRenderer) RenderProposal(_ context.Context, proposal *bomdomain.Proposal) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	title := proposal.Title
	if strings.TrimSpace(title) == "" {
		title = proposal.Project.Name
	}
	m.AddRow(12,
		text.NewCol(12, title, props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	m.AddRow(16,
		col.New(6).Add(
			text.New(proposal.Branding.OrgName, props.Text{Style: fontstyle.Bold}),
			text.New("Proposal v"+fmt.Sprintf("%d", proposal.Version), props.Text{Top: 5, Size: 9}),
			text.New("Issued "+proposal.CreatedAt.Format("2 Jan 2006"), props.Text{Top: 9, Size: 9}),
		),
		col.New(6).Add(
			text.New("Project: "+proposal.Project.Name, props.Text{Size: 9}),
			text.New("Reference: "+proposal.ShareID, props.Text{Top: 4, Size: 9}),
		),
	)

	if strings.TrimSpace(proposal.Note) != "" {
		m.AddRow(14,
			text.NewCol(12, proposal.Note, props.Text{Size: 9}),
		)
	}

	currency := ""
	if proposal.Quote.Currency != nil {
		currency = *proposal.Quote.Currency
	}

	m.AddRow(10,
		text.NewCol(4, "Product", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(3, "Room", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(1, "Qty", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Unit price", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	for _, line := range proposal.Quote.Lines {
		m.AddRow(8,
			text.NewCol(4, line.Product, props.Text{Size: 9}),
			text.NewCol(3, line.Room, props.Text{Size: 9}),
			text.NewCol(1, fmt.Sprintf("%d", line.Qty), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, money(line.EffectiveUnitPrice, currency), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, money(line.LineTotal, currency), props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Subtotal", props.Text{Size: 9}),
		text.NewCol(2, money(proposal.Quote.Subtotal, currency), props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(8,
		col.New(8),
		text.NewCol(2, "Shipping", props.Text{Size: 9}),
		text.NewCol(2, money(proposal.Quote.Shipping, currency), props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(8,
		col.New(8),
		text.NewCol(2, "Tax", props.Text{Size: 9}),
		text.NewCol(2, money(proposal.Quote.Tax, currency), props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Total", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, money(proposal.Quote.Total, currency), props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	if strings.TrimSpace(proposal.Branding.FooterNote) != "" {
		m.AddRow(14,
			text.NewCol(12, proposal.Branding.FooterNote, props.Text{
				Size: 8,
				Top:  6,
			}),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}

func money(v float64, currency string) string {
	formatted := fmt.Sprintf("%.2f", v)
	if currency == "" {
		return formatted
	}
	return currency + " " + formatted
}

// Module wires the proposal renderer.
var Module = fx.Module("providers.pdf",
	fx.Provide(New),
)
