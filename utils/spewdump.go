package utils

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
)

var spewConfig *spew.ConfigState

func init() {
	spewConfig = spew.NewDefaultConfig()
	spewConfig.DisableCapacities = true
	spewConfig.DisablePointerAddresses = true
	spewConfig.SortKeys = true
	spewConfig.MaxDepth = 8
}

func Dump(a ...interface{}) {
	fmt.Println(SDump(a...))
}

func SDump(a ...interface{}) string {
	return spewConfig.Sdump(a...)
}
