package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/algemiroteran/canvabot/internal/entity"
)

// Store persiste la lista de clientes en un único archivo JSON plano.
// Cada guardado reescribe el archivo completo; no hay escrituras parciales.
// El mutex convierte load-mutate-save en una sección crítica de un solo
// escritor dentro del proceso.
type Store struct {
	mu   sync.Mutex
	path string
}

func New(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

// Load devuelve la lista completa. Si el archivo no existe todavía, lo crea
// vacío y devuelve una lista vacía.
func (s *Store) Load() ([]entity.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Save reemplaza el contenido completo del archivo.
func (s *Store) Save(customers []entity.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(customers)
}

// Update ejecuta load-mutate-save bajo el lock del store. Todo cambio que
// dependa del contenido actual debe pasar por acá, no por Load+Save sueltos.
func (s *Store) Update(fn func([]entity.Customer) []entity.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	customers, err := s.load()
	if err != nil {
		return err
	}
	return s.save(fn(customers))
}

// FindByPhone busca por número. Devuelve nil sin error cuando no hay registro.
func (s *Store) FindByPhone(phoneNumber string) (*entity.Customer, error) {
	customers, err := s.Load()
	if err != nil {
		return nil, err
	}
	for i := range customers {
		if customers[i].PhoneNumber == phoneNumber {
			found := customers[i]
			return &found, nil
		}
	}
	return nil, nil
}

// Upsert inserta o reemplaza el registro del número. Como mucho un registro
// por número: la deduplicación se hace acá, en la escritura.
func (s *Store) Upsert(customer entity.Customer) error {
	return s.Update(func(customers []entity.Customer) []entity.Customer {
		for i := range customers {
			if customers[i].PhoneNumber == customer.PhoneNumber {
				customers[i] = customer
				return customers
			}
		}
		return append(customers, customer)
	})
}

// SetStatus cambia el estado de los registros que coinciden con el número.
// Devuelve si tocó alguno.
func (s *Store) SetStatus(phoneNumber string, status entity.Status) (bool, error) {
	changed := false
	err := s.Update(func(customers []entity.Customer) []entity.Customer {
		for i := range customers {
			if customers[i].PhoneNumber == phoneNumber {
				customers[i].Status = status
				changed = true
			}
		}
		return customers
	})
	return changed, err
}

func (s *Store) load() ([]entity.Customer, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		if err := s.save([]entity.Customer{}); err != nil {
			return nil, err
		}
		return []entity.Customer{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("no se pudo leer %s: %w", s.path, err)
	}

	var customers []entity.Customer
	if err := json.Unmarshal(data, &customers); err != nil {
		return nil, fmt.Errorf("archivo de clientes corrupto %s: %w", s.path, err)
	}

	// Estados legados en español se normalizan al cargar; lo que no se
	// reconoce se deja tal cual para no perder información.
	for i := range customers {
		if status, err := entity.ParseStatus(string(customers[i].Status)); err == nil {
			customers[i].Status = status
		}
	}
	return customers, nil
}

func (s *Store) save(customers []entity.Customer) error {
	if customers == nil {
		customers = []entity.Customer{}
	}

	data, err := json.MarshalIndent(customers, "", "  ")
	if err != nil {
		return fmt.Errorf("no se pudo serializar la lista de clientes: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("no se pudo crear %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("no se pudo escribir %s: %w", s.path, err)
	}
	return nil
}
