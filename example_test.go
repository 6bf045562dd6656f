package cdconfig_test

import (
	"fmt"

	"github.com/go-gum/cdconfig"
)

func ExampleUnmarshal() {
	// the <Plugin redis> block as the daemon hands it over
	items := []cdconfig.ConfigItem{
		{Key: "Timeout", Values: []cdconfig.ConfigValue{cdconfig.Number(0.25)}},
		{Key: "Node", Children: []cdconfig.ConfigItem{
			{Key: "Host", Values: []cdconfig.ConfigValue{cdconfig.String("localhost")}},
			{Key: "Port", Values: []cdconfig.ConfigValue{cdconfig.Number(6379)}},
		}},
	}

	type Node struct {
		Host string
		Port int
	}

	type Config struct {
		Timeout float64
		Node    []Node
	}

	var target Config
	if err := cdconfig.Unmarshal(items, &target); err != nil {
		panic(err)
	}

	fmt.Println(target.Timeout, target.Node[0].Host, target.Node[0].Port)
	// Output: 0.25 localhost 6379
}
