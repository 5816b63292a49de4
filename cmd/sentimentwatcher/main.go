package main

import "sentiment-event-alerts/internal/cli"

func main() {
	cli.Execute()
}
