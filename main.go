package main

import "github.com/chettriyuvraj/storage-heap/cmd"

func main() {
	cmd.Execute()
}
