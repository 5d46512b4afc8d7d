package main

import (
	"socialcast/cmd/handlers"
)

func main() {
	handlers.Execute()
}
