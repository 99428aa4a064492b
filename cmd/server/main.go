package main

import "github.com/nguyentranbao-ct/community-realtime/cmd"

func main() {
	cmd.Execute()
}
