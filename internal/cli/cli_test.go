package cli

import (
	"context"
	"strings"
	"testing"

	"github.com/nyumbalink/nyumbalink/internal/model"
	"github.com/nyumbalink/nyumbalink/internal/repository"
)

const fixtureYAML = `
users:
  - email: Juma@Example.com
    password: nyumba2024
    full_name: Juma Ally
    role: property_admin
    phone: "0712 345 678"
    language: sw
  - email: asha@example.com
    password: karibu123
    full_name: Asha Mushi
properties:
  - owner: juma@example.com
    title: Two bedroom apartment in Mikocheni
    description: Quiet compound close to the main road
    type: apartment
    region: dar es salaam
    district: Kinondoni
    price_tzs: 450000
    bedrooms: 2
    bathrooms: 1
    amenities: [WiFi, parking, wifi]
    featured: true
  - owner: juma@example.com
    title: Shop front on Uhuru street
    description: Ground floor unit
    type: commercial
    region: Dar es Salaam
    district: Ilala
    price_tzs: 900000
    status: occupied
`

func TestParseFixtures(t *testing.T) {
	seed, err := ParseFixtures([]byte(fixtureYAML))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(seed.Users) != 2 || len(seed.Properties) != 2 {
		t.Fatalf("seed = %+v", seed)
	}
	juma := seed.Users[0].User
	if juma.Email != "juma@example.com" || juma.Role != model.RolePropertyAdmin || juma.Phone == nil || *juma.Phone != "0712345678" {
		t.Fatalf("juma = %+v", juma)
	}
	if seed.Users[1].User.Role != model.RoleTenant {
		t.Fatalf("default role = %s", seed.Users[1].User.Role)
	}
	p := seed.Properties[0].Property
	if p.Region != "Dar es Salaam" || p.Type != model.TypeApartment || len(p.Amenities) != 2 || !p.IsFeatured {
		t.Fatalf("property = %+v", p)
	}
	if seed.Properties[1].Property.Status != model.StatusOccupied {
		t.Fatalf("status = %s", seed.Properties[1].Property.Status)
	}
}

func TestParseFixturesReportsEveryProblem(t *testing.T) {
	bad := `
users:
  - email: not-an-email
    password: karibu123
  - email: a@example.com
    password: short
  - email: b@example.com
    password: karibu123
    role: landlord
  - email: c@example.com
    password: karibu123
    phone: "+254712345678"
properties:
  - owner: a@example.com
    title: Castle
    type: castle
    region: Dar es Salaam
    price_tzs: 1000
  - owner: a@example.com
    title: Room
    type: room
    region: Nairobi
    price_tzs: 1000
  - owner: a@example.com
    title: Room
    type: room
    region: Mwanza
    district: ` + strings.Repeat("d", 65) + `
    price_tzs: 1000
`
	_, err := ParseFixtures([]byte(bad))
	if err == nil {
		t.Fatal("expected errors")
	}
	msg := err.Error()
	for _, want := range []string{"users[0]", "users[1]", "users[2]", "users[3]", "properties[0]", "properties[1]", "properties[2]"} {
		if !strings.Contains(msg, want) {
			t.Errorf("missing %s in %q", want, msg)
		}
	}

	if _, err := ParseFixtures([]byte("users: [")); err == nil {
		t.Fatal("expected YAML error")
	}
}

type memUsers struct {
	byEmail map[string]model.User
	next    uint64
}

func (m *memUsers) Create(_ context.Context, u *model.User, _ string, _ int) error {
	if _, ok := m.byEmail[u.Email]; ok {
		return repository.ErrEmailExists
	}
	m.next++
	u.ID = m.next
	m.byEmail[u.Email] = *u
	return nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return u, repository.ErrUserNotFound
	}
	return u, nil
}

type memProps struct {
	rows     []model.Property
	featured []uint64
}

func (m *memProps) Create(_ context.Context, p *model.Property) error {
	p.ID = uint64(len(m.rows) + 1)
	m.rows = append(m.rows, *p)
	return nil
}

func (m *memProps) SetFeatured(_ context.Context, id uint64, _ bool) (model.Property, error) {
	m.featured = append(m.featured, id)
	return m.rows[id-1], nil
}

func (m *memProps) ListByOwner(_ context.Context, ownerID uint64, _, _ int) ([]model.Property, int64, error) {
	var out []model.Property
	for _, p := range m.rows {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	return out, int64(len(out)), nil
}

func TestApplySeedIsRepeatable(t *testing.T) {
	seed, err := ParseFixtures([]byte(fixtureYAML))
	if err != nil {
		t.Fatal(err)
	}
	users := &memUsers{byEmail: map[string]model.User{}}
	props := &memProps{}

	rep, err := ApplySeed(context.Background(), seed, users, props, 4)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if rep != (SeedReport{UsersCreated: 2, PropertiesCreated: 2}) {
		t.Fatalf("first report = %+v", rep)
	}
	if len(props.featured) != 1 || props.featured[0] != 1 {
		t.Fatalf("featured = %v", props.featured)
	}

	rep, err = ApplySeed(context.Background(), seed, users, props, 4)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if rep != (SeedReport{UsersSkipped: 2, PropertiesSkipped: 2}) {
		t.Fatalf("second report = %+v", rep)
	}
}

func TestApplySeedRejectsTenantOwner(t *testing.T) {
	seed, err := ParseFixtures([]byte(`
users:
  - email: asha@example.com
    password: karibu123
properties:
  - owner: asha@example.com
    title: Room in Sinza
    type: room
    region: Dar es Salaam
    price_tzs: 80000
`))
	if err != nil {
		t.Fatal(err)
	}
	_, err = ApplySeed(context.Background(), seed, &memUsers{byEmail: map[string]model.User{}}, &memProps{}, 4)
	if err == nil || !strings.Contains(err.Error(), "not PROPERTY_ADMIN") {
		t.Fatalf("err = %v", err)
	}
}

func TestCommandTree(t *testing.T) {
	root := NewRootCmd()
	for _, path := range [][]string{{"migrate"}, {"seed"}, {"promote"}, {"tokens", "purge"}} {
		cmd, _, err := root.Find(path)
		if err != nil || cmd.Name() != path[len(path)-1] {
			t.Fatalf("find %v: %v", path, err)
		}
	}
}
