package main

import "PostGenius/cmd"

func main() {
	cmd.Execute()
}
