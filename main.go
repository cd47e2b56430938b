package main

import "rumah123-etl/cmd"

func main() {
	cmd.Execute()
}
