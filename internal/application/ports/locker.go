package ports

import "context"

// Locker exclusión mutua entre instancias de la API, previa a la transacción.
// Si la llave está tomada Lock devuelve domain.ErrConcurrentModification.
type Locker interface {
	Lock(ctx context.Context, key string) (release func(context.Context) error, err error)
}

// NopLocker no bloquea; el FOR UPDATE NOWAIT de la base sigue protegiendo la fila.
type NopLocker struct{}

func (NopLocker) Lock(context.Context, string) (func(context.Context) error, error) {
	return func(context.Context) error { return nil }, nil
}
