package ecs

import (
	"fmt"
	"iter"
	"reflect"

	"go.uber.org/zap"
)

type systemRecord struct {
	name      string
	typ       reflect.Type
	system    System
	signature Signature
}

// SystemDirectory owns every registered system, its required signature and
// its entity set. Iteration over systems follows registration order.
type SystemDirectory struct {
	log     *zap.Logger
	records []*systemRecord
	byType  map[reflect.Type]*systemRecord
}

func NewSystemDirectory(log *zap.Logger) *SystemDirectory {
	if log == nil {
		log = zap.NewNop()
	}
	return &SystemDirectory{
		log:    log,
		byType: make(map[reflect.Type]*systemRecord),
	}
}

// registerSystem stores sys under its concrete type. A type can be
// registered only once, and an instance belongs to a single directory.
func registerSystem[S System](d *SystemDirectory, sys S) (S, error) {
	t := reflect.TypeFor[S]()
	if v := reflect.ValueOf(sys); !v.IsValid() || (v.Kind() == reflect.Pointer && v.IsNil()) {
		return sys, fmt.Errorf("ecs: cannot register nil system %s", t)
	}
	if _, ok := d.byType[t]; ok {
		return sys, fmt.Errorf("%w: %s", ErrAlreadyRegistered, t)
	}

	base := sys.systemBase()
	if base == nil {
		return sys, fmt.Errorf("ecs: system %s has a nil SystemBase", t)
	}
	if base.owner != nil {
		return sys, fmt.Errorf("%w: %s instance belongs to another coordinator", ErrAlreadyRegistered, t)
	}
	if base.entities == nil {
		base.entities = NewEntitySet(0)
	} else {
		base.entities.Clear()
	}

	base.owner = d

	rec := &systemRecord{
		name:   systemName(t),
		typ:    t,
		system: sys,
	}
	d.records = append(d.records, rec)
	d.byType[t] = rec

	d.log.Debug("system directory registered system", zap.String("system", rec.name))
	return sys, nil
}

// systemPtr is satisfied by *S when S embeds SystemBase and implements
// Execute on its pointer receiver.
type systemPtr[S any] interface {
	*S
	System
}

// registerNewSystem constructs a zero-value S and registers it.
func registerNewSystem[S any, P systemPtr[S]](d *SystemDirectory) (P, error) {
	return registerSystem[P](d, P(new(S)))
}

func lookupSystem[S System](d *SystemDirectory) (*systemRecord, error) {
	t := reflect.TypeFor[S]()
	rec, ok := d.byType[t]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnregisteredSystem, t)
	}
	return rec, nil
}

// getSystem returns the registered instance of S.
func getSystem[S System](d *SystemDirectory) (S, error) {
	rec, err := lookupSystem[S](d)
	if err != nil {
		var zero S
		return zero, err
	}
	sys, ok := rec.system.(S)
	if !ok {
		var zero S
		return zero, fmt.Errorf("ecs: system %s stored as %T", rec.name, rec.system)
	}
	return sys, nil
}

// setSystemSignature stores the required signature for S. The caller is
// responsible for resyncing membership of existing entities.
func setSystemSignature[S System](d *SystemDirectory, sig Signature) (*systemRecord, error) {
	rec, err := lookupSystem[S](d)
	if err != nil {
		return nil, err
	}
	rec.signature = sig

	d.log.Debug("system directory set signature",
		zap.String("system", rec.name),
		zap.Stringer("signature", sig))
	return rec, nil
}

func systemSignature[S System](d *SystemDirectory) (Signature, error) {
	rec, err := lookupSystem[S](d)
	if err != nil {
		return 0, err
	}
	return rec.signature, nil
}

// EntityDestroyed removes e from every system.
func (d *SystemDirectory) EntityDestroyed(e Entity) {
	for _, rec := range d.records {
		rec.system.systemBase().entities.Remove(e)
	}
	d.log.Debug("system directory erased entity from all systems", zap.Uint32("entity", uint32(e)))
}

// EntitySignatureChanged recomputes the membership of e in every system.
func (d *SystemDirectory) EntitySignatureChanged(e Entity, sig Signature) {
	for _, rec := range d.records {
		d.updateMembership(rec, e, sig)
	}
}

// resync rebuilds the entity set of rec from the live entities of r.
func (d *SystemDirectory) resync(rec *systemRecord, r *EntityRegistry) {
	set := rec.system.systemBase().entities
	set.Clear()
	if rec.signature.IsEmpty() {
		return
	}
	for e := range r.Live() {
		if r.signatures[e].Contains(rec.signature) {
			set.Insert(e)
		}
	}

	d.log.Debug("system directory resynced system",
		zap.String("system", rec.name),
		zap.Int("entities", set.Len()))
}

// updateMembership adds e to rec when its signature matches and removes it
// otherwise. Systems with an empty signature never match.
func (d *SystemDirectory) updateMembership(rec *systemRecord, e Entity, sig Signature) {
	set := rec.system.systemBase().entities
	if !rec.signature.IsEmpty() && sig.Contains(rec.signature) {
		if set.Insert(e) {
			d.log.Debug("system directory added entity to system",
				zap.Uint32("entity", uint32(e)),
				zap.String("system", rec.name))
		}
		return
	}
	if set.Remove(e) {
		d.log.Debug("system directory removed entity from system",
			zap.Uint32("entity", uint32(e)),
			zap.String("system", rec.name))
	}
}

// Systems iterates the registered systems in registration order.
func (d *SystemDirectory) Systems() iter.Seq[System] {
	return func(yield func(System) bool) {
		for _, rec := range d.records {
			if !yield(rec.system) {
				return
			}
		}
	}
}

func (d *SystemDirectory) Len() int {
	return len(d.records)
}

func systemName(t reflect.Type) string {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}
