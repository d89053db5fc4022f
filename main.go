package main

import "github.com/xiaotaozi1127/story-teller-backend/cmd"

// @title           Story Teller API
// @version         1.0.0
// @description     Turns long-form text into narrated audio with a cloned reference voice, chunk by chunk
// @termsOfService  http://swagger.io/terms/
// @contact.name    API Support
// @contact.url     https://github.com/xiaotaozi1127/story-teller-backend
// @license.name    MIT
// @license.url     https://opensource.org/licenses/MIT
// @host            localhost:8000
// @BasePath        /
// @schemes         http https
func main() {
	cmd.Execute()
}
