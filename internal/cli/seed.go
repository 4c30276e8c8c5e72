package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nyumbalink/nyumbalink/internal/model"
	"github.com/nyumbalink/nyumbalink/internal/repository"
)

type seedUserStore interface {
	Create(ctx context.Context, u *model.User, password string, cost int) error
	GetByEmail(ctx context.Context, email string) (model.User, error)
}

type seedPropertyStore interface {
	Create(ctx context.Context, p *model.Property) error
	SetFeatured(ctx context.Context, id uint64, featured bool) (model.Property, error)
	ListByOwner(ctx context.Context, ownerID uint64, page, pageSize int) ([]model.Property, int64, error)
}

// SeedReport counts what a seed run did.
type SeedReport struct {
	UsersCreated, UsersSkipped           int
	PropertiesCreated, PropertiesSkipped int
}

func newSeedCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load users and listings from a YAML fixture file",
		Long: `Load users and listings from a YAML fixture file.

Existing users (by email) and listings (by owner and title) are left alone,
so a seed file can be applied more than once.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, err := LoadFixtures(file)
			if err != nil {
				return err
			}
			db, cfg, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
			defer cancel()
			rep, err := ApplySeed(ctx, seed, repository.NewUserRepo(db), repository.NewPropertyRepo(db), cfg.BcryptCost)
			if err != nil {
				return err
			}
			ok.Printf("✅ users: %d created, %d existing\n", rep.UsersCreated, rep.UsersSkipped)
			ok.Printf("✅ properties: %d created, %d existing\n", rep.PropertiesCreated, rep.PropertiesSkipped)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "fixtures.yaml", "Fixture file")
	return cmd
}

// ApplySeed writes seed through the given stores.
func ApplySeed(ctx context.Context, seed Seed, users seedUserStore, props seedPropertyStore, cost int) (SeedReport, error) {
	var rep SeedReport
	for _, su := range seed.Users {
		u := su.User
		err := users.Create(ctx, &u, su.Password, cost)
		switch {
		case errors.Is(err, repository.ErrEmailExists):
			rep.UsersSkipped++
		case err != nil:
			return rep, fmt.Errorf("user %s: %w", su.User.Email, err)
		default:
			rep.UsersCreated++
		}
	}

	titles := map[uint64]map[string]bool{}
	for _, sp := range seed.Properties {
		owner, err := users.GetByEmail(ctx, sp.OwnerEmail)
		if err != nil {
			return rep, fmt.Errorf("property %q: owner %s: %w", sp.Property.Title, sp.OwnerEmail, err)
		}
		if owner.Role != model.RolePropertyAdmin {
			return rep, fmt.Errorf("property %q: owner %s is %s, not %s", sp.Property.Title, sp.OwnerEmail, owner.Role, model.RolePropertyAdmin)
		}
		if titles[owner.ID] == nil {
			existing, _, err := props.ListByOwner(ctx, owner.ID, 1, 100)
			if err != nil {
				return rep, err
			}
			titles[owner.ID] = map[string]bool{}
			for _, p := range existing {
				titles[owner.ID][p.Title] = true
			}
		}
		if titles[owner.ID][sp.Property.Title] {
			rep.PropertiesSkipped++
			continue
		}

		p := sp.Property
		p.OwnerID = owner.ID
		if err := props.Create(ctx, &p); err != nil {
			return rep, fmt.Errorf("property %q: %w", p.Title, err)
		}
		if sp.Property.IsFeatured {
			if _, err := props.SetFeatured(ctx, p.ID, true); err != nil {
				return rep, fmt.Errorf("property %q: feature: %w", p.Title, err)
			}
		}
		titles[owner.ID][p.Title] = true
		rep.PropertiesCreated++
	}
	return rep, nil
}
