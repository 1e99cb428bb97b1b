// Package memory keeps declaration inputs in process memory. It backs the
// offline mode of the declare command and the service and API tests.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tradeops/backoffice/internal/domain"
	"github.com/tradeops/backoffice/internal/repository"
	"github.com/tradeops/backoffice/pkg/errors"
)

// Faults makes individual collections fail, for exercising degraded runs
type Faults struct {
	InvoiceLines error
	PackingLines error
	Definitions  error
	Values       error
	Extras       error
	Compliance   error
}

// Store holds every record in memory
type Store struct {
	mu sync.Mutex

	Clients      []domain.APIClient                 `json:"-"`
	Orders       []domain.Order                     `json:"orders"`
	InvoiceLines []domain.InvoiceLine               `json:"invoice_lines"`
	PackingLines map[uuid.UUID][]domain.PackingLine `json:"packing_lines"`
	Definitions  []domain.AttributeDefinition       `json:"definitions"`
	Values       []domain.AttributeValue            `json:"values"`
	Extras       []domain.ExtraAttribute            `json:"extras"`
	Compliance   []domain.ComplianceCandidate       `json:"compliance"`

	Faults Faults `json:"-"`

	// Batches records the size of every id batch passed to a lookup
	Batches []int `json:"-"`
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{PackingLines: make(map[uuid.UUID][]domain.PackingLine)}
}

// LoadFile reads a JSON fixture into a new store
func LoadFile(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}

	s := NewStore()
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}
	if s.PackingLines == nil {
		s.PackingLines = make(map[uuid.UUID][]domain.PackingLine)
	}
	return s, nil
}

// Repositories exposes the store through the repository interfaces
func (s *Store) Repositories() *repository.Repositories {
	return &repository.Repositories{
		APIClient:   clientRepo{s},
		Order:       orderRepo{s},
		InvoiceLine: invoiceLineRepo{s},
		PackingLine: packingLineRepo{s},
		Attribute:   attributeRepo{s},
		Compliance:  complianceRepo{s},
	}
}

// AddClient registers an active API client for key
func (s *Store) AddClient(name, key string) (*domain.APIClient, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}
	client := domain.APIClient{ID: uuid.New(), Name: name, APIKeyHash: string(hash), IsActive: true}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.Clients = append(s.Clients, client)
	return &client, nil
}

func (s *Store) recordBatch(n int) {
	s.Batches = append(s.Batches, n)
}

type clientRepo struct{ s *Store }

func (r clientRepo) GetByAPIKey(ctx context.Context, apiKey string) (*domain.APIClient, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.Clients {
		if !c.IsActive {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(c.APIKeyHash), []byte(apiKey)) == nil {
			client := c
			return &client, nil
		}
	}
	return nil, &errors.ErrUnauthorized{Message: "invalid API key"}
}

func (r clientRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.APIClient, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.Clients {
		if c.ID == id {
			client := c
			return &client, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "api client", ID: id.String()}
}

func (r clientRepo) Create(ctx context.Context, client *domain.APIClient) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if client.ID == uuid.Nil {
		client.ID = uuid.New()
	}
	r.s.Clients = append(r.s.Clients, *client)
	return nil
}

func (r clientRepo) Update(ctx context.Context, client *domain.APIClient) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, c := range r.s.Clients {
		if c.ID == client.ID {
			r.s.Clients[i] = *client
			return nil
		}
	}
	return &errors.ErrNotFound{Resource: "api client", ID: client.ID.String()}
}

type orderRepo struct{ s *Store }

func (r orderRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.Orders {
		if o.ID == id {
			order := o
			return &order, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "order", ID: id.String()}
}

type invoiceLineRepo struct{ s *Store }

func (r invoiceLineRepo) ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]domain.InvoiceLine, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Faults.InvoiceLines != nil {
		return nil, r.s.Faults.InvoiceLines
	}
	var out []domain.InvoiceLine
	for _, line := range r.s.InvoiceLines {
		if line.OrderID == orderID {
			out = append(out, line)
		}
	}
	return out, nil
}

type packingLineRepo struct{ s *Store }

func (r packingLineRepo) ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]domain.PackingLine, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Faults.PackingLines != nil {
		return nil, r.s.Faults.PackingLines
	}
	return append([]domain.PackingLine(nil), r.s.PackingLines[orderID]...), nil
}

type attributeRepo struct{ s *Store }

func (r attributeRepo) ListDefinitions(ctx context.Context) ([]domain.AttributeDefinition, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Faults.Definitions != nil {
		return nil, r.s.Faults.Definitions
	}
	return append([]domain.AttributeDefinition(nil), r.s.Definitions...), nil
}

func (r attributeRepo) ListValues(ctx context.Context, productIDs []uuid.UUID) ([]domain.AttributeValue, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.recordBatch(len(productIDs))
	if r.s.Faults.Values != nil {
		return nil, r.s.Faults.Values
	}
	wanted := idSet(productIDs)
	var out []domain.AttributeValue
	for _, v := range r.s.Values {
		if wanted[v.ProductID] {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r attributeRepo) ListExtras(ctx context.Context, productIDs []uuid.UUID) ([]domain.ExtraAttribute, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.recordBatch(len(productIDs))
	if r.s.Faults.Extras != nil {
		return nil, r.s.Faults.Extras
	}
	wanted := idSet(productIDs)
	var out []domain.ExtraAttribute
	for _, e := range r.s.Extras {
		if wanted[e.ProductID] {
			out = append(out, e)
		}
	}
	return out, nil
}

type complianceRepo struct{ s *Store }

func (r complianceRepo) ListByTypes(ctx context.Context, typeIDs []uuid.UUID, typeNames []string) ([]domain.ComplianceCandidate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.recordBatch(len(typeIDs) + len(typeNames))
	if r.s.Faults.Compliance != nil {
		return nil, r.s.Faults.Compliance
	}
	wanted := idSet(typeIDs)
	var out []domain.ComplianceCandidate
	for _, c := range r.s.Compliance {
		if c.ProductTypeID != nil && wanted[*c.ProductTypeID] {
			out = append(out, c)
			continue
		}
		for _, name := range typeNames {
			if strings.EqualFold(strings.TrimSpace(c.ProductTypeName), strings.TrimSpace(name)) {
				out = append(out, c)
				break
			}
		}
	}
	return out, nil
}

func idSet(ids []uuid.UUID) map[uuid.UUID]bool {
	set := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
