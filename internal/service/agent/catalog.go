package agent

import (
	"fmt"
	"strings"
	"sync"

	toolprovider "github.com/w-h-a/groomwise/tool_provider"
)

type Catalog struct {
	tools map[string]toolprovider.ToolProvider
	order []string
	mtx   sync.RWMutex
}

func (c *Catalog) Register(tp toolprovider.ToolProvider) error {
	if tp == nil {
		return fmt.Errorf("tool is nil")
	}

	c.mtx.Lock()
	defer c.mtx.Unlock()

	key := normalizeToolName(tp.Name())
	if len(key) == 0 {
		return fmt.Errorf("tool name is required")
	}

	if _, ok := c.tools[key]; ok {
		return fmt.Errorf("tool %s already registered", key)
	}

	c.tools[key] = tp
	c.order = append(c.order, key)

	return nil
}

// Names lists the registered tools as they named themselves.
func (c *Catalog) Names() []string {
	c.mtx.RLock()
	defer c.mtx.RUnlock()

	names := make([]string, 0, len(c.order))
	for _, key := range c.order {
		names = append(names, c.tools[key].Name())
	}

	return names
}

func (c *Catalog) List() []toolprovider.ToolProvider {
	c.mtx.RLock()
	defer c.mtx.RUnlock()

	tools := make([]toolprovider.ToolProvider, 0, len(c.order))
	for _, key := range c.order {
		tools = append(tools, c.tools[key])
	}

	return tools
}

func (c *Catalog) Get(name string) (toolprovider.ToolProvider, bool) {
	c.mtx.RLock()
	defer c.mtx.RUnlock()

	tp, ok := c.tools[normalizeToolName(name)]

	return tp, ok
}

func NewCatalog() *Catalog {
	return &Catalog{
		tools: map[string]toolprovider.ToolProvider{},
		order: []string{},
		mtx:   sync.RWMutex{},
	}
}

// normalizeToolName drops markdown emphasis and case so "**Python_REPL**"
// finds Python_REPL.
func normalizeToolName(name string) string {
	return strings.ToLower(strings.Trim(name, "* \t\r\n"))
}
