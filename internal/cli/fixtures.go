package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/nyumbalink/nyumbalink/internal/model"
	"github.com/nyumbalink/nyumbalink/internal/validation"
)

// properties.title and properties.district column widths
const (
	maxTitleLen    = 160
	maxDistrictLen = 64
)

// Fixtures is the seed file layout.
type Fixtures struct {
	Users      []UserFixture     `yaml:"users"`
	Properties []PropertyFixture `yaml:"properties"`
}

// UserFixture describes one account.  Role defaults to TENANT.
type UserFixture struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	FullName string `yaml:"full_name"`
	Phone    string `yaml:"phone"`
	Role     string `yaml:"role"`
	Language string `yaml:"language"`
}

// PropertyFixture describes one listing; Owner is the owner's email.
type PropertyFixture struct {
	Owner       string   `yaml:"owner"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Type        string   `yaml:"type"`
	Region      string   `yaml:"region"`
	District    string   `yaml:"district"`
	Address     string   `yaml:"address"`
	PriceTZS    uint64   `yaml:"price_tzs"`
	Bedrooms    uint32   `yaml:"bedrooms"`
	Bathrooms   uint32   `yaml:"bathrooms"`
	AreaSqm     *uint32  `yaml:"area_sqm"`
	Amenities   []string `yaml:"amenities"`
	Status      string   `yaml:"status"`
	Featured    bool     `yaml:"featured"`
}

// SeedUser is a validated user fixture.
type SeedUser struct {
	User     model.User
	Password string
}

// SeedProperty is a validated property fixture.
type SeedProperty struct {
	OwnerEmail string
	Property   model.Property
}

// Seed is the validated content of a fixture file.
type Seed struct {
	Users      []SeedUser
	Properties []SeedProperty
}

// LoadFixtures reads and validates a YAML fixture file.
func LoadFixtures(path string) (Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("reading fixture file: %w", err)
	}
	return ParseFixtures(data)
}

// ParseFixtures decodes and validates fixtures.  Every problem is
// reported, not just the first.
func ParseFixtures(data []byte) (Seed, error) {
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Seed{}, fmt.Errorf("unmarshalling YAML: %w", err)
	}

	var (
		seed Seed
		errs []error
	)
	emails := map[string]bool{}
	for i, uf := range f.Users {
		u, err := uf.toUser()
		if err != nil {
			errs = append(errs, fmt.Errorf("users[%d]: %w", i, err))
			continue
		}
		if emails[u.Email] {
			errs = append(errs, fmt.Errorf("users[%d]: duplicate email %s", i, u.Email))
			continue
		}
		emails[u.Email] = true
		seed.Users = append(seed.Users, SeedUser{User: u, Password: uf.Password})
	}
	for i, pf := range f.Properties {
		p, err := pf.toProperty()
		if err != nil {
			errs = append(errs, fmt.Errorf("properties[%d]: %w", i, err))
			continue
		}
		seed.Properties = append(seed.Properties, SeedProperty{
			OwnerEmail: strings.ToLower(strings.TrimSpace(pf.Owner)),
			Property:   p,
		})
	}
	if len(errs) > 0 {
		return Seed{}, errors.Join(errs...)
	}
	return seed, nil
}

func (uf UserFixture) toUser() (model.User, error) {
	email := strings.ToLower(strings.TrimSpace(uf.Email))
	if email == "" || !strings.Contains(email, "@") {
		return model.User{}, fmt.Errorf("invalid email %q", uf.Email)
	}
	if len(uf.Password) < 8 {
		return model.User{}, errors.New("password must have at least 8 characters")
	}
	role := model.RoleTenant
	if uf.Role != "" {
		r, ok := model.ParseRole(uf.Role)
		if !ok {
			return model.User{}, fmt.Errorf("unknown role %q", uf.Role)
		}
		role = r
	}
	u := model.User{
		Email:    email,
		FullName: strings.TrimSpace(uf.FullName),
		Role:     role,
		Language: uf.Language,
		IsActive: true,
	}
	if uf.Phone != "" {
		phone := validation.NormalizePhone(uf.Phone)
		if !validation.ValidPhone(phone) {
			return model.User{}, fmt.Errorf("invalid phone %q", uf.Phone)
		}
		u.Phone = &phone
	}
	return u, nil
}

func (pf PropertyFixture) toProperty() (model.Property, error) {
	if strings.TrimSpace(pf.Owner) == "" {
		return model.Property{}, errors.New("owner is required")
	}
	title, district := strings.TrimSpace(pf.Title), strings.TrimSpace(pf.District)
	switch {
	case title == "":
		return model.Property{}, errors.New("title is required")
	case utf8.RuneCountInString(title) > maxTitleLen:
		return model.Property{}, fmt.Errorf("title longer than %d characters", maxTitleLen)
	case utf8.RuneCountInString(district) > maxDistrictLen:
		return model.Property{}, fmt.Errorf("district longer than %d characters", maxDistrictLen)
	}
	pt, ok := model.ParsePropertyType(pf.Type)
	if !ok {
		return model.Property{}, fmt.Errorf("unknown type %q", pf.Type)
	}
	region, ok := model.CanonicalRegion(pf.Region)
	if !ok {
		return model.Property{}, fmt.Errorf("unknown region %q", pf.Region)
	}
	if pf.PriceTZS == 0 {
		return model.Property{}, errors.New("price_tzs is required")
	}
	status := model.StatusAvailable
	if pf.Status != "" {
		st, ok := model.ParsePropertyStatus(pf.Status)
		if !ok {
			return model.Property{}, fmt.Errorf("unknown status %q", pf.Status)
		}
		status = st
	}
	return model.Property{
		Title:       title,
		Description: strings.TrimSpace(pf.Description),
		Type:        pt,
		Region:      region,
		District:    district,
		Address:     strings.TrimSpace(pf.Address),
		PriceTZS:    pf.PriceTZS,
		Bedrooms:    pf.Bedrooms,
		Bathrooms:   pf.Bathrooms,
		AreaSqm:     pf.AreaSqm,
		Amenities:   model.Amenities(pf.Amenities).Normalize(),
		Status:      status,
		IsFeatured:  pf.Featured,
	}, nil
}
