package main

import "operator-console/cmd/operator-console/cmd"

func main() {
	cmd.Execute()
}
