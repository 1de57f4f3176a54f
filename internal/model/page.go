package model

import "fmt"

// PageInfo is the pagination metadata of a paged envelope.
type PageInfo struct {
	TotalPages    int `json:"totalPaginas"`
	TotalElements int `json:"totalElementos"`
}

// Page is the paged envelope the backends wrap list results in.
type Page[T any] struct {
	Records []T      `json:"registros"`
	Info    PageInfo `json:"pagina"`
}

// validator is implemented by every record type that can appear in a Page.
type validator interface {
	Validate() error
}

// ValidatePage validates every record of p. A nil record list is accepted
// and treated as empty.
func ValidatePage[T validator](p Page[T]) error {
	for i, rec := range p.Records {
		if err := rec.Validate(); err != nil {
			return fmt.Errorf("registros[%d]: %w", i, err)
		}
	}
	return nil
}
