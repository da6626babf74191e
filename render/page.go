package render

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/components"
)

// WritePage renders elements as one standalone HTML page.
func WritePage(w io.Writer, title string, elements []Element) error {
	page := components.NewPage()
	page.PageTitle = title
	if page.PageTitle == "" {
		page.PageTitle = "chartflow"
	}
	for _, e := range elements {
		page.AddCharts(e.Charter())
	}
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}
