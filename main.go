package main

import (
	"nightchat/cmd/app"
)

func main() {
	app.GetApp().LetsGo()
}
