package dashboard

import (
	"embed"
	"fmt"
	"html/template"

	"github.com/speedwagon-io/vitaldash/internal/feed"
	"github.com/speedwagon-io/vitaldash/internal/status"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

const UnknownEmployee = "Unknown Employee"

type statusView struct {
	Class string
	Text  string
	Style template.CSS
}

type employeeRowView struct {
	Cells  []string
	Status *statusView
}

type employeesPage struct {
	Title   string
	Columns []string
	Rows    []employeeRowView
}

type sensorsPage struct {
	Title string
	Table feed.Table
}

type employeePage struct {
	Title string
	Name  string
}

func employeeRows(rows []status.Row) []employeeRowView {
	views := make([]employeeRowView, 0, len(rows))
	for _, r := range rows {
		v := employeeRowView{Cells: r.Cells}
		if r.Status != nil {
			v.Status = &statusView{Class: r.Status.Class, Text: r.Status.Text}
			if r.Status.Background != "" {
				v.Status.Style = template.CSS(fmt.Sprintf("background-color: %s; color: %s", r.Status.Background, r.Status.Color))
			}
		}
		views = append(views, v)
	}
	return views
}
