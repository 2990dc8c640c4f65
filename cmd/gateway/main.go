package main

import "hrconsole/internal/app/gateway"

func main() {
	gateway.Run()
}
