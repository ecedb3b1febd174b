package main

import (
	"strings"
)

const fillRequiredFields = "Please fill in all required fields."

var sampleAuthors = []Author{
	{Name: "Orhan Pamuk", BirthDate: "1952-06-07", Country: "Turkey"},
	{Name: "Yaşar Kemal", BirthDate: "1923-10-06", Country: "Turkey"},
	{Name: "Elif Şafak", BirthDate: "1971-10-25", Country: "Turkey"},
	{Name: "Nazım Hikmet", BirthDate: "1902-01-15", Country: "Turkey"},
	{Name: "Ahmet Hamdi Tanpınar", BirthDate: "1901-06-23", Country: "Turkey"},
}

var samplePublishers = []Publisher{
	{Name: "Bilge Kültür Sanat", EstablishmentYear: 1995, Address: "İstanbul, Türkiye"},
	{Name: "Mavi Karga Yayınları", EstablishmentYear: 2010, Address: "Ankara, Türkiye"},
	{Name: "Çınar Kitap", EstablishmentYear: 1983, Address: "İzmir, Türkiye"},
	{Name: "Gölge Yayınları", EstablishmentYear: 2005, Address: "Bursa, Türkiye"},
	{Name: "Yakamoz Kitabevi", EstablishmentYear: 2018, Address: "Antalya, Türkiye"},
}

var sampleCategories = []Category{
	{Name: "Kurgu", Description: "Romanlar ve hikayeler"},
	{Name: "Bilim", Description: "Bilim üzerine kitaplar"},
	{Name: "Tarih", Description: "Tarihsel kitaplar"},
	{Name: "Felsefe", Description: "Felsefi eserler"},
	{Name: "Teknoloji", Description: "Teknolojiyle ilgili kitaplar"},
}

// AuthorSchema configures the author page. It has no client-side rules.
func AuthorSchema() *Schema[Author] {
	return &Schema[Author]{
		Resource: AuthorsResource,
		Title:    "Authors",
		Fields: []FieldSpec{
			{Name: "name", Label: "Name"},
			{Name: "birthDate", Label: "Birth date", Placeholder: DateLayout},
			{Name: "country", Label: "Country"},
		},
		Columns: []string{"ID", "Name", "Birth date", "Country"},
		Row: func(a Author) []string {
			return []string{formatID(a.ID), a.Name, a.BirthDate, a.Country}
		},
		Values: func(a Author) FormValues {
			return FormValues{"name": a.Name, "birthDate": a.BirthDate, "country": a.Country}
		},
		Build: func(base Author, v FormValues) (Author, error) {
			base.Name = v["name"]
			base.BirthDate = v["birthDate"]
			base.Country = v["country"]
			return base, nil
		},
		Samples:       sampleAuthors,
		Messages:      DefaultMessages("author", "authors"),
		ConfirmDelete: true,
	}
}

func PublisherSchema() *Schema[Publisher] {
	required := RequireFields(fillRequiredFields, "name", "establishmentYear", "address")
	return &Schema[Publisher]{
		Resource: PublishersResource,
		Title:    "Publishers",
		Fields: []FieldSpec{
			{Name: "name", Label: "Name"},
			{Name: "establishmentYear", Label: "Establishment year", Placeholder: "1995"},
			{Name: "address", Label: "Address"},
		},
		Columns: []string{"ID", "Name", "Established", "Address"},
		Row: func(p Publisher) []string {
			return []string{formatID(p.ID), p.Name, formatInt(p.EstablishmentYear), p.Address}
		},
		Values: func(p Publisher) FormValues {
			return FormValues{"name": p.Name, "establishmentYear": formatInt(p.EstablishmentYear), "address": p.Address}
		},
		Build: func(base Publisher, v FormValues) (Publisher, error) {
			year, err := parseIntValue(v, "establishmentYear")
			if err != nil {
				return base, err
			}
			base.Name = v["name"]
			base.EstablishmentYear = year
			base.Address = v["address"]
			return base, nil
		},
		CreateRules:   []Rule{required},
		UpdateRules:   []Rule{required},
		Samples:       samplePublishers,
		Messages:      DefaultMessages("publisher", "publishers"),
		ConfirmDelete: true,
	}
}

// CategorySchema configures the category page. It has no client-side rules.
func CategorySchema() *Schema[Category] {
	return &Schema[Category]{
		Resource: CategoriesResource,
		Title:    "Categories",
		Fields: []FieldSpec{
			{Name: "name", Label: "Name"},
			{Name: "description", Label: "Description"},
		},
		Columns: []string{"ID", "Name", "Description"},
		Row: func(c Category) []string {
			return []string{formatID(c.ID), c.Name, c.Description}
		},
		Values: func(c Category) FormValues {
			return FormValues{"name": c.Name, "description": c.Description}
		},
		Build: func(base Category, v FormValues) (Category, error) {
			base.Name = v["name"]
			base.Description = v["description"]
			return base, nil
		},
		Samples:       sampleCategories,
		Messages:      DefaultMessages("category", "categories"),
		ConfirmDelete: true,
	}
}

// BookSchema configures the book page. Books are deleted without confirmation.
func BookSchema() *Schema[Book] {
	required := RequireFields(fillRequiredFields, "name", "publicationYear", "stock", "authorId", "publisherId", "categoryIds")
	return &Schema[Book]{
		Resource: BooksResource,
		Title:    "Books",
		Fields: []FieldSpec{
			{Name: "name", Label: "Name"},
			{Name: "publicationYear", Label: "Publication year", Placeholder: "2002"},
			{Name: "stock", Label: "Stock", Placeholder: "10"},
			{Name: "authorId", Label: "Author ID"},
			{Name: "publisherId", Label: "Publisher ID"},
			{Name: "categoryIds", Label: "Category IDs", Placeholder: "1,3"},
		},
		Columns: []string{"ID", "Name", "Year", "Stock", "Author", "Publisher", "Categories"},
		Row: func(b Book) []string {
			names := make([]string, 0, len(b.Categories))
			for _, c := range b.Categories {
				names = append(names, formatRefName(c))
			}
			return []string{
				formatID(b.ID), b.Name, formatInt(b.PublicationYear), formatInt(b.Stock),
				formatRefName(b.Author), formatRefName(b.Publisher), strings.Join(names, ", "),
			}
		},
		Values: func(b Book) FormValues {
			return FormValues{
				"name":            b.Name,
				"publicationYear": formatInt(b.PublicationYear),
				"stock":           formatInt(b.Stock),
				"authorId":        formatID(b.Author.ID),
				"publisherId":     formatID(b.Publisher.ID),
				"categoryIds":     formatIDs(b.CategoryIDs()),
			}
		},
		Build: func(base Book, v FormValues) (Book, error) {
			year, err := parseIntValue(v, "publicationYear")
			if err != nil {
				return base, err
			}
			stock, err := parseIntValue(v, "stock")
			if err != nil {
				return base, err
			}
			authorID, err := parseIDValue(v, "authorId")
			if err != nil {
				return base, err
			}
			publisherID, err := parseIDValue(v, "publisherId")
			if err != nil {
				return base, err
			}
			categoryIDs, err := parseIDsValue(v, "categoryIds")
			if err != nil {
				return base, err
			}
			base.Name = v["name"]
			base.PublicationYear = year
			base.Stock = stock
			base.Author = Ref{ID: authorID}
			base.Publisher = Ref{ID: publisherID}
			base.Categories = make([]Ref, 0, len(categoryIDs))
			for _, id := range categoryIDs {
				base.Categories = append(base.Categories, Ref{ID: id})
			}
			return base, nil
		},
		Clone:         Book.Clone,
		CreateRules:   []Rule{required},
		UpdateRules:   []Rule{required},
		Messages:      DefaultMessages("book", "books"),
		ClearOnCancel: true,
	}
}

// BorrowingSchema configures the borrowing page. The book of a new borrowing
// is looked up in the books store, which is patched once the borrowing is
// created.
func BorrowingSchema(books *CollectionStore[Book]) *Schema[Borrowing] {
	selectedBook := func(v FormValues) (Book, bool) {
		id, err := parseIDValue(v, "bookId")
		if err != nil || id == 0 {
			return Book{}, false
		}
		return books.Find(id)
	}
	return &Schema[Borrowing]{
		Resource: BorrowingsResource,
		Title:    "Borrowings",
		Fields: []FieldSpec{
			{Name: "borrowerName", Label: "Borrower name"},
			{Name: "borrowerMail", Label: "Borrower mail"},
			{Name: "borrowingDate", Label: "Borrowing date", Placeholder: DateLayout},
			{Name: "returnDate", Label: "Return date", Placeholder: DateLayout},
			{Name: "bookId", Label: "Book ID"},
		},
		Columns: []string{"ID", "Borrower", "Mail", "Borrowed", "Returned", "Book"},
		Row: func(b Borrowing) []string {
			return []string{formatID(b.ID), b.BorrowerName, b.BorrowerMail, b.BorrowingDate, b.ReturnDate, b.Book.Name}
		},
		Values: func(b Borrowing) FormValues {
			return FormValues{
				"borrowerName":  b.BorrowerName,
				"borrowerMail":  b.BorrowerMail,
				"borrowingDate": b.BorrowingDate,
				"returnDate":    b.ReturnDate,
				"bookId":        formatID(b.Book.ID),
			}
		},
		Build: func(base Borrowing, v FormValues) (Borrowing, error) {
			base.BorrowerName = v["borrowerName"]
			base.BorrowerMail = v["borrowerMail"]
			base.BorrowingDate = v["borrowingDate"]
			base.ReturnDate = v["returnDate"]
			if base.ID != 0 {
				return base, nil
			}
			book, ok := selectedBook(v)
			if !ok {
				return base, &ClientValidationError{Fields: []string{"bookId"}, Reason: "Please select a book."}
			}
			base.Book = BookSnapshot{
				ID:              book.ID,
				Name:            book.Name,
				PublicationYear: book.PublicationYear,
				Stock:           book.Stock - 1,
			}
			return base, nil
		},
		CreateRules: []Rule{
			RequireFields(fillRequiredFields, "borrowerName", "borrowerMail", "borrowingDate"),
			{
				Fields:  []string{"bookId"},
				Check:   func(v FormValues) bool { _, ok := selectedBook(v); return ok },
				Message: "Please select a book.",
			},
			{
				Fields:  []string{"bookId"},
				Check:   func(v FormValues) bool { b, _ := selectedBook(v); return b.Stock > 0 },
				Message: "This book is out of stock.",
			},
		},
		Messages:      DefaultMessages("borrowing", "borrowings"),
		ConfirmDelete: true,
		ClearOnCancel: true,
		OnCreated: func(b Borrowing) {
			if book, ok := books.Find(b.Book.ID); ok {
				book.Stock--
				books.ApplyUpdate(book)
			}
		},
	}
}
