package main

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	eventmodels "voluntr/internal/event/models"
	identitymodels "voluntr/internal/identity/models"
	orgmodels "voluntr/internal/organization/models"
)

//go:embed fixtures/demo.yaml
var demoFixtures []byte

type fixtures struct {
	Organizations []organizationFixture `yaml:"organizations"`
	Volunteers    []volunteerFixture    `yaml:"volunteers"`
}

type organizationFixture struct {
	AdminEmail         string         `yaml:"admin_email"`
	AdminName          string         `yaml:"admin_name"`
	Name               string         `yaml:"name"`
	RegistrationNumber string         `yaml:"registration_number"`
	Description        string         `yaml:"description"`
	LogoURL            string         `yaml:"logo_url"`
	ContactName        string         `yaml:"contact_name"`
	ContactDesignation string         `yaml:"contact_designation"`
	Verification       string         `yaml:"verification"`
	Events             []eventFixture `yaml:"events"`
}

type eventFixture struct {
	Title              string   `yaml:"title"`
	Description        string   `yaml:"description"`
	Location           string   `yaml:"location"`
	InDays             int      `yaml:"in_days"`
	RequiredVolunteers int      `yaml:"required_volunteers"`
	ImageURL           string   `yaml:"image_url"`
	Category           string   `yaml:"category"`
	Causes             []string `yaml:"causes"`
	Skills             []string `yaml:"skills"`
}

type volunteerFixture struct {
	Email         string   `yaml:"email"`
	Name          string   `yaml:"name"`
	Phone         string   `yaml:"phone"`
	Location      string   `yaml:"location"`
	MaxDistanceKm int      `yaml:"max_distance_km"`
	Skills        []string `yaml:"skills"`
	Interests     []string `yaml:"interests"`
}

func parseFixtures(r io.Reader) (*fixtures, error) {
	var f fixtures
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}
	return &f, nil
}

func seedCmd(c *cli) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load demo organizations, events and volunteers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var src io.Reader
			if file == "" {
				src = bytes.NewReader(demoFixtures)
			} else {
				fh, err := os.Open(file)
				if err != nil {
					return err
				}
				defer fh.Close()
				src = fh
			}
			f, err := parseFixtures(src)
			if err != nil {
				return err
			}

			if c.cfg.Database.URL == "" {
				return errNoDatabase
			}
			a, err := newApp(cmd.Context(), c.cfg, c.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.seed(cmd.Context(), f, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d organizations, %d events, %d volunteers\n", n.orgs, n.events, n.volunteers)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "fixtures file (defaults to the built-in demo set)")
	return cmd
}

type seeded struct {
	orgs, events, volunteers int
}

// seed goes through the services so fixtures obey the same rules and audit
// trail as API traffic. Accounts are matched by email, so re-running only
// refreshes profiles; events are always added.
func (a *app) seed(ctx context.Context, f *fixtures, now time.Time) (seeded, error) {
	var n seeded
	for _, of := range f.Organizations {
		account, err := a.identity.ResolveOrCreateAccount(ctx, identitymodels.ExternalIdentity{
			Email:       of.AdminEmail,
			DisplayName: of.AdminName,
			Provider:    "seed",
		})
		if err != nil {
			return n, fmt.Errorf("admin %s: %w", of.AdminEmail, err)
		}
		_, org, err := a.identity.CompleteNGOOnboarding(ctx, account.ID, orgmodels.Profile{
			Name:               of.Name,
			RegistrationNumber: of.RegistrationNumber,
			Description:        of.Description,
			LogoURL:            of.LogoURL,
			ContactName:        of.ContactName,
			ContactDesignation: of.ContactDesignation,
		})
		if err != nil {
			return n, fmt.Errorf("organization %s: %w", of.Name, err)
		}
		if of.Verification != "" {
			status, err := orgmodels.ParseVerificationStatus(of.Verification)
			if err != nil {
				return n, fmt.Errorf("organization %s: %w", of.Name, err)
			}
			if status != org.VerificationStatus {
				if _, err := a.orgs.SetVerification(ctx, org.ID, status, "seed"); err != nil {
					return n, fmt.Errorf("organization %s: %w", of.Name, err)
				}
			}
		}
		n.orgs++

		for _, ef := range of.Events {
			_, err := a.events.CreateEvent(ctx, account.ID, eventmodels.Draft{
				Title:              ef.Title,
				Description:        ef.Description,
				Location:           ef.Location,
				Date:               now.AddDate(0, 0, ef.InDays).Truncate(time.Hour),
				RequiredVolunteers: ef.RequiredVolunteers,
				ImageURL:           ef.ImageURL,
				Category:           ef.Category,
				Causes:             ef.Causes,
				Skills:             ef.Skills,
			})
			if err != nil {
				return n, fmt.Errorf("event %s: %w", ef.Title, err)
			}
			n.events++
		}
	}

	for _, vf := range f.Volunteers {
		account, err := a.identity.ResolveOrCreateAccount(ctx, identitymodels.ExternalIdentity{
			Email:       vf.Email,
			DisplayName: vf.Name,
			Provider:    "seed",
		})
		if err != nil {
			return n, fmt.Errorf("volunteer %s: %w", vf.Email, err)
		}
		if _, err := a.identity.CompleteVolunteerOnboarding(ctx, account.ID, identitymodels.VolunteerProfile{
			LegalName:     vf.Name,
			Phone:         vf.Phone,
			Location:      vf.Location,
			MaxDistanceKm: vf.MaxDistanceKm,
			Skills:        vf.Skills,
			Interests:     vf.Interests,
		}); err != nil {
			return n, fmt.Errorf("volunteer %s: %w", vf.Email, err)
		}
		n.volunteers++
	}
	return n, nil
}
