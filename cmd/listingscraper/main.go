package main

import (
	"context"
	"listingscraper/cmd/listingscraper/commands"
)

func main() {
	commands.ExecuteContext(context.Background())
}
