package main

import "taskshield/internal/app"

func main() {
	app.Run()
}
