package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/ukydev/fleet-admin/internal/config"
)

var cities = []struct {
	City, State, Country string
}{
	{"Bengaluru", "Karnataka", "India"},
	{"Mysuru", "Karnataka", "India"},
	{"Pune", "Maharashtra", "India"},
	{"Chennai", "Tamil Nadu", "India"},
	{"Hyderabad", "Telangana", "India"},
	{"Kochi", "Kerala", "India"},
}

var categories = []string{"school", "college", "logistics", "corporate"}

// stateCodes prefix generated registration plates.
var stateCodes = []string{"KA", "MH", "TN", "TS", "KL"}

type seedOptions struct {
	APIURL    string
	LoginName string
	Password  string
	Orgs      int
	Trackers  int
}

func newSeedCmd(cfg *config.Config) *cobra.Command {
	opts := seedOptions{APIURL: "http://localhost:" + cfg.Port + "/api"}
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create demo organizations and trackers through the API",
		RunE:  func(cmd *cobra.Command, _ []string) error {
			s := newSeeder(opts.APIURL, rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)))
			_, err := s.run(cmd.Context(), opts)
			return err
		},
	}
	cmd.Flags().StringVar(&opts.APIURL, "api", opts.APIURL, "base URL of the admin API")
	cmd.Flags().StringVar(&opts.LoginName, "login", "", "administrator login name")
	cmd.Flags().StringVar(&opts.Password, "password", "", "administrator password")
	cmd.Flags().IntVar(&opts.Orgs, "orgs", 2, "number of organizations to create")
	cmd.Flags().IntVar(&opts.Trackers, "trackers", 5, "number of trackers per organization")
	_ = cmd.MarkFlagRequired("login")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

// seeder drives the admin API as a client would.
type seeder struct {
	apiURL string
	client *http.Client
	rnd    *rand.Rand
	token  string
}

func newSeeder(apiURL string, rnd *rand.Rand) *seeder {
	return &seeder{
		apiURL: strings.TrimSuffix(apiURL, "/"),
		client: &http.Client{Timeout: 10 * time.Second},
		rnd:    rnd,
	}
}

// seedResult lists what a seed run created.
type seedResult struct {
	Organizations []string
	Trackers      []string
}

func (s *seeder) run(ctx context.Context, opts seedOptions) (seedResult, error) {
	var res seedResult
	if err := s.login(ctx, opts.LoginName, opts.Password); err != nil {
		return res, err
	}

	for i := 0; i < opts.Orgs; i++ {
		orgID, err := s.createOrganization(ctx, i+1)
		if err != nil {
			return res, err
		}
		res.Organizations = append(res.Organizations, orgID)

		for j := 0; j < opts.Trackers; j++ {
			trackerID, err := s.createTracker(ctx, orgID, j+1)
			if err != nil {
				log.WithError(err).WithField("organization_id", orgID).Error("Failed to create tracker")
				continue
			}
			res.Trackers = append(res.Trackers, trackerID)
		}
	}

	log.WithFields(log.Fields{
		"organizations": len(res.Organizations),
		"trackers":      len(res.Trackers),
	}).Info("Seed completed")
	return res, nil
}

type apiReply struct {
	Status         string          `json:"status"`
	EC             string          `json:"ec"`
	Response       json.RawMessage `json:"response"`
	Token          string          `json:"token"`
	OrganizationID string          `json:"organizationId"`
	TrackerID      string          `json:"trackerId"`
}

func (s *seeder) post(ctx context.Context, path string, data map[string]interface{}) (apiReply, error) {
	var reply apiReply
	if s.token != "" {
		data["key"] = s.token
	}
	body, err := json.Marshal(map[string]interface{}{"data": data})
	if err != nil {
		return reply, fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL+path, bytes.NewReader(body))
	if err != nil {
		return reply, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return reply, fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return reply, fmt.Errorf("POST %s: failed to decode response: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK || reply.Status != "success" {
		return reply, fmt.Errorf("POST %s failed with status %d (ec %q): %s", path, resp.StatusCode, reply.EC, reply.Response)
	}
	return reply, nil
}

func (s *seeder) login(ctx context.Context, loginName, password string) error {
	reply, err := s.post(ctx, "/admin/login", map[string]interface{}{
		"form": map[string]string{"loginname": loginName, "password": password},
	})
	if err != nil {
		return err
	}
	if reply.Token == "" {
		return errors.New("login returned no token")
	}
	s.token = reply.Token
	return nil
}

func (s *seeder) createOrganization(ctx context.Context, n int) (string, error) {
	c := cities[s.rnd.IntN(len(cities))]
	name := fmt.Sprintf("Demo Fleet %d %04d", n, s.rnd.IntN(10000))
	reply, err := s.post(ctx, "/organization/create", map[string]interface{}{
		"form": map[string]interface{}{
			"name":     name,
			"category": categories[s.rnd.IntN(len(categories))],
			"address":  fmt.Sprintf("%d Main Road", 1+s.rnd.IntN(200)),
			"area":     "Central",
			"city":     c.City,
			"state":    c.State,
			"country":  c.Country,
			"email":    fmt.Sprintf("fleet%d.%04d@example.com", n, s.rnd.IntN(10000)),
			"status":   "active",
		},
	})
	if err != nil {
		return "", err
	}
	log.WithFields(log.Fields{"organization_id": reply.OrganizationID, "name": name}).Info("Created organization")
	return reply.OrganizationID, nil
}

func (s *seeder) createTracker(ctx context.Context, orgID string, n int) (string, error) {
	plate := randomPlate(s.rnd)
	imei := randomIMEI(s.rnd)
	reply, err := s.post(ctx, "/trackers/create", map[string]interface{}{
		"form": map[string]interface{}{
			"imei":               imei,
			"boxid":              fmt.Sprintf("BOX%06d", s.rnd.IntN(1000000)),
			"simCard":            fmt.Sprintf("89%017d", s.rnd.Int64N(1e17)),
			"organizationId":     orgID,
			"vehicleInformation": map[string]string{
				"name":  fmt.Sprintf("Vehicle %d", n),
				"regno": plate,
			},
		},
	})
	if err != nil {
		return "", err
	}
	log.WithFields(log.Fields{"tracker_id": reply.TrackerID, "imei": imei, "regno": plate}).Info("Created tracker")
	return reply.TrackerID, nil
}

// randomPlate returns a plate such as "KA 05 MK 4821".
func randomPlate(rnd *rand.Rand) string {
	letter := func() byte { return byte('A' + rnd.IntN(26)) }
	return fmt.Sprintf("%s %02d %c%c %04d",
		stateCodes[rnd.IntN(len(stateCodes))], 1+rnd.IntN(99), letter(), letter(), rnd.IntN(10000))
}

// randomIMEI returns a 15 digit IMEI with a valid Luhn check digit.
func randomIMEI(rnd *rand.Rand) string {
	digits := make([]byte, 15)
	for i := 0; i < 14; i++ {
		digits[i] = byte('0' + rnd.IntN(10))
	}
	digits[0] = byte('1' + rnd.IntN(9))
	digits[14] = byte('0' + luhnCheckDigit(digits[:14]))
	return string(digits)
}

func luhnCheckDigit(payload []byte) int {
	sum := 0
	for i := len(payload) - 1; i >= 0; i-- {
		d := int(payload[i] - '0')
		// Doubling starts from the rightmost payload digit.
		if (len(payload)-1-i)%2 == 0 {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
	}
	return (10 - sum%10) % 10
}
