package utils

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Page is a normalized ?page=&page_size= pair.
type Page struct {
	Number int
	Size   int
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

func NewPage(number, size int) Page {
	if number < 1 {
		number = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Page{Number: number, Size: size}
}

func ResolvePage(c *fiber.Ctx) Page {
	number, _ := strconv.Atoi(strings.TrimSpace(c.Query("page", "1")))
	size, _ := strconv.Atoi(strings.TrimSpace(c.Query("page_size", strconv.Itoa(DefaultPageSize))))
	return NewPage(number, size)
}
