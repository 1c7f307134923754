package core

import (
	"strconv"
	"strings"
)

// PerPage is the fixed page size of all lists.
const PerPage = 10

// A Page is one slice of a filtered, id-ordered collection.
type Page[T any] struct {
	Items    []T
	Number   int // 1-based
	NumPages int // at least 1
	Count    int // total number of matching items
}

func (p *Page[T]) HasPrevious() bool {
	return p.Number > 1
}

func (p *Page[T]) HasNext() bool {
	return p.Number < p.NumPages
}

// NumPages returns the number of pages required for count items. An empty collection has one empty page.
func NumPages(count, perPage int) int {
	if count <= 0 {
		return 1
	}
	return (count + perPage - 1) / perPage
}

// ParsePage parses a page query parameter. An empty value means the first page, "last" means the last page.
// Anything else which is not a page number between 1 and numPages results in ErrNotFound.
func ParsePage(param string, numPages int) (int, error) {
	param = strings.TrimSpace(param)
	switch param {
	case "":
		return 1, nil
	case "last":
		return numPages, nil
	}
	page, err := strconv.Atoi(param)
	if err != nil || page < 1 || page > numPages {
		return 0, ErrNotFound
	}
	return page, nil
}

func paginate[T any](pageParam string, count func() (int, error), fetch func(limit, offset int) ([]T, error)) (*Page[T], error) {

	total, err := count()
	if err != nil {
		return nil, err
	}

	var numPages = NumPages(total, PerPage)

	number, err := ParsePage(pageParam, numPages)
	if err != nil {
		return nil, err
	}

	items, err := fetch(PerPage, (number-1)*PerPage)
	if err != nil {
		return nil, err
	}

	return &Page[T]{
		Items:    items,
		Number:   number,
		NumPages: numPages,
		Count:    total,
	}, nil
}
