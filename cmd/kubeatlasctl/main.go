package main

import "github.com/jrsteele09/kubeatlas-console/cmd/kubeatlasctl/cmd"

func main() {
	cmd.Execute()
}
