package common

import (
	"os"
	"strings"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	idNode *snowflake.Node
	idOnce sync.Once
)

func idnode() *snowflake.Node {
	idOnce.Do(func() {
		node, err := snowflake.NewNode(1)
		if err != nil {
			panic(err)
		}
		idNode = node
	})
	return idNode
}

// UUIDint64 returns a snowflake int64 id
func UUIDint64() int64 {
	return idnode().Generate().Int64()
}

// UUID returns a snowflake id in string form, used as document _id
func UUID() string {
	return idnode().Generate().String()
}

// EnvString reads an environment variable with a fallback default
func EnvString(name, defval string) string {
	if v, ok := os.LookupEnv(name); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return defval
}

// FileExists checks that path exists and is not a directory
func FileExists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && !fi.IsDir()
}
