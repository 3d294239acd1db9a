package main

import (
	"fmt"

	"github.com/listenupapp/bookshelf-server/internal/domain"
)

// checkBooks lists every rule the collection breaks, in file order.
func checkBooks(books []domain.Book) []string {
	var problems []string
	seen := make(map[string]int, len(books))

	for i, b := range books {
		where := fmt.Sprintf("record %d (id %q)", i, b.ID)

		if b.ID == "" {
			problems = append(problems, where+": missing id")
		} else if first, dup := seen[b.ID]; dup {
			problems = append(problems, fmt.Sprintf("%s: duplicate id, first seen at record %d", where, first))
		} else {
			seen[b.ID] = i
		}

		if b.Name == "" {
			problems = append(problems, where+": empty name")
		}
		if b.ReadPage > b.PageCount {
			problems = append(problems, fmt.Sprintf("%s: readPage %d exceeds pageCount %d", where, b.ReadPage, b.PageCount))
		}
	}

	return problems
}
