package main

// Resource names. They are used as API path segments, storage kinds and
// queue change kinds.
const (
	AuthorsResource    = "authors"
	BooksResource      = "books"
	PublishersResource = "publishers"
	CategoriesResource = "categories"
	BorrowingsResource = "borrowings"
)

// DateLayout is the calendar date format used by birth and borrowing dates.
const DateLayout = "2006-01-02"

// Record is implemented by every catalog entity. Ids are assigned by the
// backend storage, never by clients.
type Record[T any] interface {
	RecordID() int64
	WithRecordID(id int64) T
}

// Ref is a reference to another entity. The name is filled by the backend
// on responses and ignored on requests.
type Ref struct {
	ID   int64  `json:"id"`
	Name string `json:"name,omitempty"`
}

// Author represents an author entity.
type Author struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	BirthDate string `json:"birthDate"`
	Country   string `json:"country"`
}

func (a Author) RecordID() int64 { return a.ID }

func (a Author) WithRecordID(id int64) Author {
	a.ID = id
	return a
}

// Publisher represents a publisher entity.
type Publisher struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	EstablishmentYear int    `json:"establishmentYear"`
	Address           string `json:"address"`
}

func (p Publisher) RecordID() int64 { return p.ID }

func (p Publisher) WithRecordID(id int64) Publisher {
	p.ID = id
	return p
}

// Category represents a book category entity.
type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (c Category) RecordID() int64 { return c.ID }

func (c Category) WithRecordID(id int64) Category {
	c.ID = id
	return c
}

// Book represents a book entity. Author and publisher are many-to-one
// references, categories a many-to-many one.
type Book struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	PublicationYear int    `json:"publicationYear"`
	Stock           int    `json:"stock"`
	Author          Ref    `json:"author"`
	Publisher       Ref    `json:"publisher"`
	Categories      []Ref  `json:"categories"`
}

func (b Book) RecordID() int64 { return b.ID }

func (b Book) WithRecordID(id int64) Book {
	b.ID = id
	return b
}

// Clone returns a copy of the book which does not share its categories.
func (b Book) Clone() Book {
	if b.Categories != nil {
		b.Categories = append([]Ref(nil), b.Categories...)
	}
	return b
}

// CategoryIDs returns the referenced categories ids in order.
func (b Book) CategoryIDs() []int64 {
	ids := make([]int64, 0, len(b.Categories))
	for _, c := range b.Categories {
		ids = append(ids, c.ID)
	}
	return ids
}

// BookSnapshot is the denormalized copy of a book kept by a borrowing.
type BookSnapshot struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	PublicationYear int    `json:"publicationYear"`
	Stock           int    `json:"stock"`
}

// Borrowing represents a book loan. The book snapshot reflects the book
// at borrowing time.
type Borrowing struct {
	ID            int64        `json:"id"`
	BorrowerName  string       `json:"borrowerName"`
	BorrowerMail  string       `json:"borrowerMail"`
	BorrowingDate string       `json:"borrowingDate"`
	ReturnDate    string       `json:"returnDate,omitempty"`
	Book          BookSnapshot `json:"book"`
}

func (b Borrowing) RecordID() int64 { return b.ID }

func (b Borrowing) WithRecordID(id int64) Borrowing {
	b.ID = id
	return b
}

// BorrowingRequest is the borrowing creation payload. The book travels as
// a snapshot whose stock is already decremented by the client.
type BorrowingRequest struct {
	BorrowerName  string       `json:"borrowerName"`
	BorrowerMail  string       `json:"borrowerMail"`
	BorrowingDate string       `json:"borrowingDate"`
	ReturnDate    string       `json:"returnDate,omitempty"`
	Book          BookSnapshot `json:"bookForBorrowingRequest"`
}

// BorrowingUpdateRequest is the borrowing update payload. The book of an
// existing borrowing cannot be changed.
type BorrowingUpdateRequest struct {
	BorrowerName  string `json:"borrowerName"`
	BorrowerMail  string `json:"borrowerMail"`
	BorrowingDate string `json:"borrowingDate"`
	ReturnDate    string `json:"returnDate,omitempty"`
}

// NewBorrowingRequest builds the creation payload of a borrowing.
func NewBorrowingRequest(b Borrowing) BorrowingRequest {
	return BorrowingRequest{
		BorrowerName:  b.BorrowerName,
		BorrowerMail:  b.BorrowerMail,
		BorrowingDate: b.BorrowingDate,
		ReturnDate:    b.ReturnDate,
		Book:          b.Book,
	}
}

// NewBorrowingUpdateRequest builds the update payload of a borrowing.
func NewBorrowingUpdateRequest(b Borrowing) BorrowingUpdateRequest {
	return BorrowingUpdateRequest{
		BorrowerName:  b.BorrowerName,
		BorrowerMail:  b.BorrowerMail,
		BorrowingDate: b.BorrowingDate,
		ReturnDate:    b.ReturnDate,
	}
}

// Borrowing converts the creation payload into a borrowing.
func (r BorrowingRequest) Borrowing() Borrowing {
	return Borrowing{
		BorrowerName:  r.BorrowerName,
		BorrowerMail:  r.BorrowerMail,
		BorrowingDate: r.BorrowingDate,
		ReturnDate:    r.ReturnDate,
		Book:          r.Book,
	}
}

// Borrowing converts the update payload into a borrowing without book.
func (r BorrowingUpdateRequest) Borrowing() Borrowing {
	return Borrowing{
		BorrowerName:  r.BorrowerName,
		BorrowerMail:  r.BorrowerMail,
		BorrowingDate: r.BorrowingDate,
		ReturnDate:    r.ReturnDate,
	}
}
