// Command devtoken mints an operator token for local testing against the
// checkout API. Production tokens come from the back office.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sangkips/checkout-api/internal/config"
	"github.com/sangkips/checkout-api/pkg/utils"
)

func main() {
	name := flag.String("name", "Cashier", "operator display name")
	id := flag.String("id", "", "operator id (random when empty)")
	terminal := flag.String("terminal", "till-1", "terminal name")
	roles := flag.String("roles", "cashier", "comma separated roles")
	flag.Parse()

	cfg := config.Load()

	operatorID := uuid.New()
	if *id != "" {
		parsed, err := uuid.Parse(*id)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid operator id")
		}
		operatorID = parsed
	}

	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.ExpiryHours)
	token, err := jwtManager.GenerateAccessToken(operatorID, *name, *terminal, strings.Split(*roles, ","))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to sign token")
	}
	fmt.Fprintln(os.Stdout, token)
}
