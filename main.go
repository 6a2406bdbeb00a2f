package main

import "orgconsole/cmd"

func main() {
	cmd.Execute()
}
