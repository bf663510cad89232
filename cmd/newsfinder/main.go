package main

import (
	"os"

	"horse.fit/newsfinder/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:]))
}
