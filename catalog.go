package main

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// Catalog holds the five pages of the console. Pages are mounted in
// dependency order so that books can reference seeded records.
type Catalog struct {
	Authors    *Page[Author]
	Publishers *Page[Publisher]
	Categories *Page[Category]
	Books      *Page[Book]
	Borrowings *Page[Borrowing]
}

// NewCatalog builds every page on top of HTTP gateways to the api.
func NewCatalog(logger *zap.Logger, config *ConsoleConfig, notifier Notifier) *Catalog {
	client := &http.Client{Timeout: config.RequestTimeout}
	opts := []PageOption{WithReconcile(config.Reconcile)}

	c := &Catalog{}
	c.Authors = NewPage[Author](logger, AuthorSchema(),
		NewHTTPGateway[Author](logger, client, config.APIURL, AuthorsResource), notifier, opts...)
	c.Publishers = NewPage[Publisher](logger, PublisherSchema(),
		NewHTTPGateway[Publisher](logger, client, config.APIURL, PublishersResource), notifier, opts...)
	c.Categories = NewPage[Category](logger, CategorySchema(),
		NewHTTPGateway[Category](logger, client, config.APIURL, CategoriesResource), notifier, opts...)
	c.Books = NewPage[Book](logger, BookSchema(),
		NewHTTPGateway[Book](logger, client, config.APIURL, BooksResource), notifier, opts...)
	c.Borrowings = NewPage[Borrowing](logger, BorrowingSchema(c.Books.Store()),
		NewHTTPGateway[Borrowing](logger, client, config.APIURL, BorrowingsResource,
			WithCreatePayload(func(b Borrowing) any { return NewBorrowingRequest(b) }),
			WithUpdatePayload(func(b Borrowing) any { return NewBorrowingUpdateRequest(b) }),
		), notifier, opts...)
	return c
}

// Pages returns the pages in display order.
func (c *Catalog) Pages() []PageView {
	return []PageView{c.Authors, c.Books, c.Publishers, c.Categories, c.Borrowings}
}

// MountAll mounts the pages one after the other and joins their errors.
func (c *Catalog) MountAll(ctx context.Context) error {
	var errs []error
	for _, p := range []PageView{c.Authors, c.Publishers, c.Categories, c.Books, c.Borrowings} {
		if err := p.Mount(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
