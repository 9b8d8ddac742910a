// cmd/main.go
package main

import (
	"go-bank-app/app"
)

// @title           Go-Bank-App API
// @version         1.0
// @description     A bank account application with deposits, withdrawals and transfers.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	app.Run()
}
