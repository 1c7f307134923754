package util

import (
	"html/template"
	"sort"
	"strconv"
)

// Pages returns non-consecutive page numbers from 1 to numPages.
// The distance to currentPage doubles with every step.
func Pages(currentPage int, numPages int) []int {

	var pages = map[int]struct{}{
		1:           {},
		currentPage: {},
		numPages:    {},
	}

	for delta := 1; currentPage-delta > 1 || currentPage+delta < numPages; delta *= 2 {
		if currentPage-delta > 0 {
			pages[currentPage-delta] = struct{}{}
		}
		if currentPage+delta < numPages {
			pages[currentPage+delta] = struct{}{}
		}
	}

	var result = make([]int, 0, len(pages))
	for page := range pages {
		result = append(result, page)
	}
	sort.Ints(result)
	return result
}

// PageLinks calls Pages and renders pagination items. href returns the link target of a page.
// If there is only one page, it returns nil.
func PageLinks(currentPage int, numPages int, href func(page int) string) []template.HTML {

	if currentPage < 1 || numPages < 2 {
		return nil
	}

	var link = func(page int, name string) template.HTML {
		return template.HTML(`<li class="page-item"><a class="page-link" href="` + template.HTMLEscapeString(href(page)) + `">` + name + `</a></li>`)
	}

	var links = []template.HTML{}

	if currentPage > 1 {
		links = append(links, link(currentPage-1, `&laquo;`))
	}

	for _, page := range Pages(currentPage, numPages) {
		if page == currentPage {
			links = append(links, template.HTML(`<li class="page-item active"><span class="page-link">`+strconv.Itoa(page)+`</span></li>`))
		} else {
			links = append(links, link(page, strconv.Itoa(page)))
		}
	}

	if currentPage < numPages {
		links = append(links, link(currentPage+1, `&raquo;`))
	}

	return links
}
