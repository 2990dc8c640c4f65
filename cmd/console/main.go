package main

import "hrconsole/internal/app/console"

func main() {
	console.Run()
}
