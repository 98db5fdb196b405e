package main

import "github.com/mediasfu/recordctl/internal/app"

func main() {
	app.Main()
}
