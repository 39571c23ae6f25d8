// Package fake provides utilities for generating randomized demo servers for
// testing and development purposes.
package fake

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wardstone/wardstone/internal/alerting"
	"github.com/wardstone/wardstone/internal/models"
	"github.com/wardstone/wardstone/internal/registry"
)

// Seed populates the registry with a specified number of randomized demo
// servers, each with synthetic check history. Monitoring stays disabled so
// the scheduler never polls the made-up hosts.
func Seed(reg *registry.Registry, count int) {
	names := []string{"Hub", "Survival", "Creative", "Skyblock", "Factions", "Bedwars", "UHC", "Anarchy"}
	hosts := []string{"play.example.com", "mc.example.net", "lobby.example.org", "srv.example.io"}
	versions := []string{"1.20.4", "1.21", "1.21.4", "1.21.5"}
	software := []string{"Paper", "Purpur", "Vanilla", "Fabric"}
	tags := []string{"production", "staging", "modded", "minigames", "eu", "us"}

	engine := alerting.New()

	for i := 0; i < count; i++ {
		monitoring := models.DefaultMonitoringSettings()
		monitoring.Alerts.HighLatency = rand.Float32() < 0.5
		monitoring.Alerts.PlayerCount = rand.Float32() < 0.3

		srv, err := reg.Add(registry.AddRequest{
			Name:        fmt.Sprintf("%s #%d", names[rand.Intn(len(names))], i+1),
			Host:        hosts[rand.Intn(len(hosts))],
			Port:        models.DefaultPort + rand.Intn(100),
			Description: "demo server",
			Tags:        []string{tags[rand.Intn(len(tags))]},
			Monitoring:  &monitoring,
		})
		if err != nil {
			log.Warn().Err(err).Msg("Failed to generate demo server")
			continue
		}

		maxPlayers := 20 + rand.Intn(180)
		checks := 20 + rand.Intn(80)

		for c := 0; c < checks; c++ {
			checkedAt := time.Now().
				Add(-time.Duration(checks-c) * 10 * time.Minute).
				Add(-time.Duration(rand.Intn(120)) * time.Second)

			result := models.PollResult{
				Online:    rand.Float32() < 0.9,
				CheckedAt: checkedAt,
			}
			if result.Online {
				result.Players = models.Players{
					Online: rand.Intn(maxPlayers + 1),
					Max:    maxPlayers,
				}
				result.LatencyMs = 10 + rand.Intn(600)
				result.Version = versions[rand.Intn(len(versions))]
				result.Software = software[rand.Intn(len(software))]
			} else {
				result.Error = "connection refused"
			}

			alerts := engine.Evaluate(&srv, &result)
			if err := reg.RecordResult(srv.ID, result, alerts); err != nil {
				log.Warn().Err(err).Str("server_id", srv.ID).Msg("Failed to record demo check")
				break
			}
		}
	}

	log.Info().Int("count", count).Msg("Demo servers generated")
}
