package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// CatalogServices groups the services of every catalog kind.
type CatalogServices struct {
	logger     *zap.Logger
	stockMu    sync.Mutex
	Authors    *RecordService[Author]
	Publishers *RecordService[Publisher]
	Categories *RecordService[Category]
	Books      *RecordService[Book]
	Borrowings *RecordService[Borrowing]
}

// NewCatalogServices wires one service per kind on top of the storage.
func NewCatalogServices(logger *zap.Logger, storage DocumentStorage, queue Queuer) *CatalogServices {
	cs := &CatalogServices{logger: logger}
	cs.Authors = NewRecordService(logger, AuthorsResource, NewRepository[Author](AuthorsResource, storage), queue,
		RecordHooks[Author]{Validate: validateAuthor})
	cs.Publishers = NewRecordService(logger, PublishersResource, NewRepository[Publisher](PublishersResource, storage), queue,
		RecordHooks[Publisher]{Validate: validatePublisher})
	cs.Categories = NewRecordService(logger, CategoriesResource, NewRepository[Category](CategoriesResource, storage), queue,
		RecordHooks[Category]{Validate: validateCategory})
	cs.Books = NewRecordService(logger, BooksResource, NewRepository[Book](BooksResource, storage), queue,
		RecordHooks[Book]{Validate: cs.validateBook})
	cs.Borrowings = NewRecordService(logger, BorrowingsResource, NewRepository[Borrowing](BorrowingsResource, storage), queue,
		RecordHooks[Borrowing]{
			Validate:   validateBorrowing,
			PrepareAdd: cs.snapshotBorrowedBook,
			Merge:      mergeBorrowing,
			AbortAdd:   cs.restoreBorrowedStock,
		})
	return cs
}

func validateDate(field, value string) error {
	if value == "" {
		return nil
	}
	if _, err := time.Parse(DateLayout, value); err != nil {
		return invalidFieldError{field, "must be a YYYY-MM-DD date"}
	}
	return nil
}

func validateAuthor(_ context.Context, a Author) (Author, error) {
	if strings.TrimSpace(a.Name) == "" {
		return a, missingFieldError("name")
	}
	return a, validateDate("birthDate", a.BirthDate)
}

func validatePublisher(_ context.Context, p Publisher) (Publisher, error) {
	if strings.TrimSpace(p.Name) == "" {
		return p, missingFieldError("name")
	}
	if p.EstablishmentYear < 0 {
		return p, invalidFieldError{"establishmentYear", "must not be negative"}
	}
	return p, nil
}

func validateCategory(_ context.Context, c Category) (Category, error) {
	if strings.TrimSpace(c.Name) == "" {
		return c, missingFieldError("name")
	}
	return c, nil
}

// validateBook checks the book fields and resolves its references so that
// stored books carry the referenced names.
func (cs *CatalogServices) validateBook(ctx context.Context, b Book) (Book, error) {
	if strings.TrimSpace(b.Name) == "" {
		return b, missingFieldError("name")
	}
	if b.PublicationYear < 0 {
		return b, invalidFieldError{"publicationYear", "must not be negative"}
	}
	if b.Stock < 0 {
		return b, invalidFieldError{"stock", "must not be negative"}
	}
	if b.Author.ID == 0 {
		return b, missingFieldError("author")
	}
	if b.Publisher.ID == 0 {
		return b, missingFieldError("publisher")
	}

	author, err := cs.Authors.GetOne(ctx, b.Author.ID)
	if err != nil {
		return b, referenceError("author", err)
	}
	b.Author.Name = author.Name

	publisher, err := cs.Publishers.GetOne(ctx, b.Publisher.ID)
	if err != nil {
		return b, referenceError("publisher", err)
	}
	b.Publisher.Name = publisher.Name

	categories := make([]Ref, 0, len(b.Categories))
	for _, ref := range b.Categories {
		category, err := cs.Categories.GetOne(ctx, ref.ID)
		if err != nil {
			return b, referenceError("categories", err)
		}
		categories = append(categories, Ref{ID: category.ID, Name: category.Name})
	}
	b.Categories = categories
	return b, nil
}

func referenceError(field string, err error) error {
	if errors.Is(err, ErrRecordNotFound) {
		return invalidFieldError{field, "references an unknown record"}
	}
	return err
}

func validateBorrowing(_ context.Context, b Borrowing) (Borrowing, error) {
	if strings.TrimSpace(b.BorrowerName) == "" {
		return b, missingFieldError("borrowerName")
	}
	if strings.TrimSpace(b.BorrowerMail) == "" {
		return b, missingFieldError("borrowerMail")
	}
	if b.BorrowingDate == "" {
		return b, missingFieldError("borrowingDate")
	}
	if err := validateDate("borrowingDate", b.BorrowingDate); err != nil {
		return b, err
	}
	return b, validateDate("returnDate", b.ReturnDate)
}

// snapshotBorrowedBook takes one copy of the book out of the stock and
// replaces the requested snapshot with the stored book state. The borrowing
// is rejected when the stock cannot be written.
func (cs *CatalogServices) snapshotBorrowedBook(ctx context.Context, b Borrowing) (Borrowing, error) {
	if b.Book.ID == 0 {
		return b, missingFieldError("bookForBorrowingRequest")
	}
	cs.stockMu.Lock()
	defer cs.stockMu.Unlock()
	book, err := cs.Books.GetOne(ctx, b.Book.ID)
	if err != nil {
		return b, referenceError("bookForBorrowingRequest", err)
	}
	if book.Stock <= 0 {
		return b, invalidFieldError{"bookForBorrowingRequest", "is out of stock"}
	}
	if b.Book.Stock != book.Stock-1 {
		cs.logger.Warn("service: borrowing snapshot stock differs from stored stock",
			zap.Int64("book.id", book.ID),
			zap.Int("snapshot.stock", b.Book.Stock),
			zap.Int("stored.stock", book.Stock),
		)
	}
	book.Stock--
	if book, err = cs.Books.Replace(ctx, book.ID, book); err != nil {
		return b, fmt.Errorf("failed to update borrowed book stock: %w", err)
	}
	b.Book = BookSnapshot{
		ID:              book.ID,
		Name:            book.Name,
		PublicationYear: book.PublicationYear,
		Stock:           book.Stock,
	}
	return b, nil
}

// restoreBorrowedStock gives the copy back when the borrowing was not stored.
func (cs *CatalogServices) restoreBorrowedStock(ctx context.Context, b Borrowing) {
	cs.stockMu.Lock()
	defer cs.stockMu.Unlock()
	book, err := cs.Books.GetOne(ctx, b.Book.ID)
	if err == nil {
		book.Stock++
		_, err = cs.Books.Replace(ctx, book.ID, book)
	}
	if err != nil {
		cs.logger.Error("service: failed to restore borrowed book stock", zap.Int64("book.id", b.Book.ID), zap.Error(err))
	}
}

// mergeBorrowing keeps the book snapshot of the stored borrowing.
func mergeBorrowing(existing, update Borrowing) Borrowing {
	update.Book = existing.Book
	return update
}
