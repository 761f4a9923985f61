package schema

import "errors"

// Context is the address of a schema node together with the store chain
// used to resolve references found inside it.
type Context struct {
	Uri   Uri
	store *Store
}

func (c *Context) Store() *Store {
	return c.store
}

// Child returns the context of an inline node nested under this one.
func (c *Context) Child(segments ...string) *Context {
	return &Context{Uri: c.Uri.Child(segments...), store: c.store}
}

// Resolve resolves a `$ref` found in this context's node. The same logical
// target always yields an equal Uri.
func (c *Context) Resolve(ref string) (*Context, *Schema, error) {
	ctx, node, err := c.store.Resolve(c.Uri.Join(ref))
	if err != nil {
		var unresolved *UnresolvedReferenceError
		if errors.As(err, &unresolved) {
			unresolved.Ref = ref
			unresolved.From = c.Uri
		}

		return nil, nil, err
	}

	return ctx, node, nil
}
