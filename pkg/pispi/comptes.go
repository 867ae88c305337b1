package pispi

import (
	"context"
	"fmt"
	"net/http"
)

// ComptesService groups the account endpoints.
type ComptesService struct {
	client *Client
}

// ListOperations lists the operations of account numero. q may be nil.
func (s *ComptesService) ListOperations(ctx context.Context, numero string, q *QueryBuilder) (*OperationPage, error) {
	if numero == "" {
		return nil, fmt.Errorf("%w: account number is required", ErrInvalidArgument)
	}

	req := Request{
		Method:     http.MethodGet,
		Path:       "/comptes/{numero}/operations",
		PathParams: map[string]string{"numero": numero},
	}
	if q != nil {
		params, err := q.Build()
		if err != nil {
			return nil, err
		}
		req.Query = params.Values()
	}

	var page OperationPage
	if err := s.client.Call(ctx, req, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// TransfertIntra moves funds between accounts held by the same participant.
func (s *ComptesService) TransfertIntra(ctx context.Context, numero string, body CompteTransfertIntraRequest) (*Transfert, error) {
	if numero == "" {
		return nil, fmt.Errorf("%w: account number is required", ErrInvalidArgument)
	}
	if err := body.Validate(); err != nil {
		return nil, err
	}

	var out Transfert
	err := s.client.Call(ctx, Request{
		Method:     http.MethodPost,
		Path:       "/comptes/{numero}/transferts",
		PathParams: map[string]string{"numero": numero},
		Body:       body,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
