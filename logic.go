package main

import (
	"errors"
	"fmt"
	"strconv"

	"vmxio.com/sop-cards/course"
)

var errBadIndex = errors.New("index must be a non-negative integer")

// isCorrectChoice reports whether the selected option is the quiz answer.
// Options are compared verbatim.
func isCorrectChoice(selected, answer string) bool {
	return selected == answer
}

// Page locates one card inside the course for the viewer's pager.
type Page struct {
	Index   int  `json:"index"`
	Total   int  `json:"total"`
	IsFirst bool `json:"isFirst"`
	IsLast  bool `json:"isLast"`
}

func pageOf(index, total int) (Page, error) {
	if index < 0 || index >= total {
		return Page{}, fmt.Errorf("card %d of %d: %w", index, total, course.ErrIndexOutOfRange)
	}
	return Page{Index: index, Total: total, IsFirst: index == 0, IsLast: index == total-1}, nil
}

func parseIndex(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%q: %w", s, errBadIndex)
	}
	return n, nil
}

// quizAt returns the quiz at index or an error for info cards.
func quizAt(c course.Course, index int) (*course.Quiz, error) {
	if _, err := pageOf(index, len(c.Cards)); err != nil {
		return nil, err
	}
	card := c.Cards[index]
	if card.Type != course.TypeQuiz || card.Quiz == nil {
		return nil, fmt.Errorf("card %d: %w", index, course.ErrWrongCardType)
	}
	return card.Quiz, nil
}
