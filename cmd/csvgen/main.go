package main

import "github.com/seiya-matsuoka/csv-to-insert-generator/internal/cli"

func main() {
	cli.Execute()
}
