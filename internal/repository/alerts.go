package repository

import (
	"context"

	"bysel/internal/result"
	"bysel/pkg/bysel"
	"bysel/pkg/storage/cache"

	"go.uber.org/zap"
)

// CreateAlert registers alert remotely. The alert is cached either way: the
// server copy on success, the local one on failure (which still returns Error).
func (r *Repository) CreateAlert(ctx context.Context, alert bysel.Alert) result.Result[bysel.Alert] {
	created, err := r.api.CreateAlert(ctx, alert)
	if err != nil {
		r.writeCache("insert local alert", func(ctx context.Context, c *cache.Client) error {
			_, err := c.InsertAlert(ctx, alert)
			return err
		})
		return result.Error[bysel.Alert](err.Error())
	}

	r.writeCache("insert alert", func(ctx context.Context, c *cache.Client) error {
		_, err := c.InsertAlert(ctx, created)
		return err
	})
	return result.Success(created)
}

// DeleteAlert deletes remotely and always deactivates the cached copy.
func (r *Repository) DeleteAlert(ctx context.Context, id int) result.Result[struct{}] {
	_, err := r.api.DeleteAlert(ctx, id)
	r.writeCache("deactivate alert", func(ctx context.Context, c *cache.Client) error {
		return c.DeactivateAlert(ctx, id)
	})
	if err != nil {
		return result.Error[struct{}](err.Error())
	}
	return result.Success(struct{}{})
}

// DeactivateLocal marks a cached alert inactive without contacting the API.
func (r *Repository) DeactivateLocal(ctx context.Context, id int) error {
	if r.cache == nil {
		return nil
	}
	return r.cache.DeactivateAlert(ctx, id)
}

func (r *Repository) AllAlerts(ctx context.Context) result.Result[[]bysel.Alert] {
	return once(ctx, r.api.GetAlerts)
}

// ActiveAlerts reads active alerts from the cache.
func (r *Repository) ActiveAlerts(ctx context.Context) ([]bysel.Alert, error) {
	if r.cache == nil {
		return nil, nil
	}
	return r.cache.ActiveAlerts(ctx)
}

// WatchActiveAlerts emits the cached active alerts now and after every change
// to the alerts table, until ctx is done.
func (r *Repository) WatchActiveAlerts(ctx context.Context) <-chan []bysel.Alert {
	out := make(chan []bysel.Alert, 1)
	if r.cache == nil {
		close(out)
		return out
	}

	changed, cancel := r.cache.Watch(cache.TableAlerts)
	go func() {
		defer close(out)
		defer cancel()

		for {
			alerts, err := r.cache.ActiveAlerts(ctx)
			if err != nil {
				r.logger.Warn("failed to read active alerts", zap.Error(err))
			} else {
				select {
				case out <- alerts:
				case <-ctx.Done():
					return
				}
			}

			select {
			case <-ctx.Done():
				return
			case _, ok := <-changed:
				if !ok {
					return
				}
			}
		}
	}()
	return out
}
