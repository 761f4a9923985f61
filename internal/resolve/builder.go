package resolve

import (
	"fmt"

	"github.com/koskimas/gltfgen/internal/model"
	"github.com/koskimas/gltfgen/internal/schema"
	"go.uber.org/zap"
)

// Builder discovers the closed set of types reachable from a set of roots
// that need to be generated in one pass. A Builder is used for exactly one
// pass and is never shared between passes.
type Builder struct {
	store   *schema.Store
	logger  *zap.Logger
	deducer *Deducer

	pending  []model.TypeDescription
	enqueued map[schema.Uri]bool
	module   *model.Module
}

func NewBuilder(store *schema.Store, logger *zap.Logger) *Builder {
	b := &Builder{
		store:    store,
		logger:   logger.With(zap.Stringer("store", store.Meta())),
		pending:  make([]model.TypeDescription, 0),
		enqueued: make(map[schema.Uri]bool),
		module:   model.NewModule(store.Meta()),
	}

	b.deducer = NewDeducer(b.VisitType)
	return b
}

// Push seeds the worklist. Overrides in `d` are used when the type gets
// resolved. A uri that has already been enqueued is ignored.
func (b *Builder) Push(d model.TypeDescription) {
	if b.enqueued[d.Uri] {
		b.logger.Debug("type already enqueued", zap.Stringer("uri", d.Uri))
		return
	}

	b.enqueued[d.Uri] = true
	b.pending = append(b.pending, d)
	b.logger.Debug("enqueued type", zap.Stringer("uri", d.Uri))
}

// VisitType enqueues every typed object `t` refers to that hasn't been seen
// yet.
func (b *Builder) VisitType(t model.Type) {
	for _, uri := range model.TypedObjects(t) {
		b.Push(model.TypeDescription{Uri: uri})
	}
}

// Traverse resolves pending types until the worklist is empty. Types whose
// documents aren't local to the store are generated by another pass and
// are skipped, but a uri that resolves nowhere in the store chain fails the
// pass. The returned module is never modified afterwards.
func (b *Builder) Traverse() (*model.Module, error) {
	for len(b.pending) > 0 {
		d := b.pending[len(b.pending)-1]
		b.pending = b.pending[:len(b.pending)-1]

		if !b.store.IsLocal(d.Uri) {
			// Foreign types must still exist somewhere in the base chain.
			if _, _, err := b.store.Resolve(d.Uri); err != nil {
				return nil, fmt.Errorf(`failed to resolve type "%s": %w`, d.Uri, err)
			}

			b.logger.Debug("skipping foreign type", zap.Stringer("uri", d.Uri))
			continue
		}

		t, err := b.resolve(d)
		if err != nil {
			return nil, fmt.Errorf(`failed to resolve type "%s": %w`, d.Uri, err)
		}

		b.module.Types[d.Uri] = t
		b.logger.Debug("resolved type",
			zap.Stringer("uri", d.Uri),
			zap.String("name", t.Name),
			zap.Int("properties", len(t.Prototype.Properties)),
		)
	}

	return b.module, nil
}

func (b *Builder) resolve(d model.TypeDescription) (*model.ResolvedType, error) {
	ctx, s, err := b.store.Resolve(d.Uri)
	if err != nil {
		return nil, err
	}

	name := d.Name
	if len(name) == 0 {
		if name, err = CanonicalName(d.Uri, s); err != nil {
			return nil, err
		}
	}

	modulePath := d.ModulePath
	if modulePath == nil {
		modulePath = DefaultModulePath(d.Uri)
	}

	prototype, err := b.deducer.ReadPrototype(ctx, s)
	if err != nil {
		return nil, err
	}

	return &model.ResolvedType{
		Uri:        d.Uri,
		ModulePath: modulePath,
		Name:       name,
		Prototype:  prototype,
		Extension:  d.Extension,
	}, nil
}
