// Package ecommerce holds the product-lookup scenarios against the test
// e-commerce service.
package ecommerce

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/krzko/tracegen/pkg/fixture"
	"github.com/krzko/tracegen/pkg/producer"
)

const (
	// Host is the simulated victim service.
	Host = "test-ecommerce.metlo.com"

	// XSSPayload is injected into the "query" parameter by the attack scenarios.
	XSSPayload = "<script>alert('XSS')</script>"

	queryParam    = "query"
	passwordWords = 5
	dateLayout    = "2006-01-02"
)

// Faker is the fake-data backend the scenarios draw entity fields from.
type Faker interface {
	UUID() (string, error)
	FirstName() string
	FreeEmail() string
	Address() string
	PhoneNumber() string
	DateOfBirth() time.Time
	Sentence(words int) (string, error)
	ProductName() string
	ProductDescription() string
	ProductCategory() string
	Price(min, max float64) float64
	IntN(n int) int
	Float64() float64
}

// AttackSources are the client addresses attack traffic originates from.
var AttackSources = []string{
	"203.0.113.7",
	"203.0.113.42",
	"198.51.100.23",
	"198.51.100.201",
	"192.0.2.66",
}

// Sources are the client addresses benign traffic originates from.
var Sources = []string{
	"10.0.1.12",
	"10.0.1.57",
	"10.0.2.31",
	"172.16.4.9",
	"172.16.4.88",
	"192.168.10.14",
}

// Destinations are the addresses of the e-commerce service instances.
var Destinations = []string{
	"10.10.0.5",
	"10.10.0.6",
	"10.10.0.7",
}

// Owner is the user record nested in a Product.
type Owner struct {
	UserUUID    string `json:"user_uuid"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Address     string `json:"address"`
	PhoneNumber string `json:"phoneNumber"`
	DOB         string `json:"dob"`
	Password    string `json:"password"`
}

// Product is the catalogue entry returned by a product lookup.
type Product struct {
	UUID        string  `json:"uuid"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	Owner       Owner   `json:"owner"`
}

type successBody struct {
	Success bool    `json:"success"`
	Product Product `json:"product"`
}

type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// NewProduct builds a product with the given id and a fully populated owner.
func NewProduct(f Faker, id string) (Product, error) {
	owner, err := NewOwner(f)
	if err != nil {
		return Product{}, err
	}
	return Product{
		UUID:        id,
		Name:        f.ProductName(),
		Description: f.ProductDescription(),
		Category:    f.ProductCategory(),
		Price:       f.Price(1, 500),
		Stock:       f.IntN(1000),
		Owner:       owner,
	}, nil
}

// NewOwner builds an owner record. All fields are drawn independently.
func NewOwner(f Faker) (Owner, error) {
	userID, err := f.UUID()
	if err != nil {
		return Owner{}, fmt.Errorf("owner id: %w", err)
	}
	password, err := f.Sentence(passwordWords)
	if err != nil {
		return Owner{}, fmt.Errorf("owner password: %w", err)
	}
	return Owner{
		UserUUID:    userID,
		Name:        f.FirstName(),
		Email:       f.FreeEmail(),
		Address:     f.Address(),
		PhoneNumber: fixture.FormatPhoneNumber(f.PhoneNumber()),
		DOB:         f.DateOfBirth().Format(dateLayout),
		Password:    password,
	}, nil
}

// lookup is one product-lookup exchange. The product id is generated once
// and every request and response built from it reuses that value.
type lookup struct {
	product Product
}

func newLookup(f Faker) (lookup, error) {
	id, err := f.UUID()
	if err != nil {
		return lookup{}, fmt.Errorf("product id: %w", err)
	}
	product, err := NewProduct(f, id)
	if err != nil {
		return lookup{}, err
	}
	return lookup{product: product}, nil
}

func (l lookup) request(params []fixture.Pair) fixture.Request {
	return fixture.NewRequest("GET", Host, "/product/"+l.product.UUID, params, nil, "")
}

func (l lookup) success() (fixture.Response, error) {
	body, err := json.Marshal(successBody{Success: true, Product: l.product})
	if err != nil {
		return fixture.Response{}, fmt.Errorf("encode response body: %w", err)
	}
	return fixture.NewResponse(200, []fixture.Pair{fixture.JSONHeader}, string(body)), nil
}

func blocked(reason string) (fixture.Response, error) {
	body, err := json.Marshal(errorBody{Success: false, Error: reason})
	if err != nil {
		return fixture.Response{}, fmt.Errorf("encode response body: %w", err)
	}
	return fixture.NewResponse(403, []fixture.Pair{fixture.JSONHeader}, string(body)), nil
}

func xssParams() []fixture.Pair {
	return []fixture.Pair{{Name: queryParam, Value: XSSPayload}}
}

// Register adds every ecommerce scenario to reg.
func Register(reg *producer.Registry, f Faker) {
	reg.Register(GetProductXSSName, GetProductXSSProbability, func(p float64) (producer.Producer, error) {
		return NewGetProductXSS(f, p)
	})
	reg.Register(GetProductXSSBlockedName, GetProductXSSBlockedProbability, func(p float64) (producer.Producer, error) {
		return NewGetProductXSSBlocked(f, p)
	})
	reg.Register(GetProductName, GetProductProbability, func(p float64) (producer.Producer, error) {
		return NewGetProduct(f, p)
	})
}
