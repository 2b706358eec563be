package main

import (
	"context"
	"time"

	"github.com/shandysiswandi/stepup/internal/app"
)

const shutdownTimeout = 10 * time.Second

// @title           Stepup API
// @version         1.0
// @description     Stepup issues and verifies SMS one-time codes bound to the operation being authorized.
// @contact.name    Contact Support
// @contact.email   support@stepup.dev
// @license.name    MIT
// @license.url     https://mit-license.org/
// @server          http://localhost:8080
// @securityDefinitions.apikey  BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the service token.
func main() {
	stepup := app.New()
	<-stepup.Start()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	stepup.Stop(ctx)
}
