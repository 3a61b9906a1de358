// Package repository содержит реализацию доступа к данным в PostgreSQL.
//
// Состояние каждого пользователя хранится как набор независимых документов,
// адресуемых парой (namespace, name): корзина, избранное, уведомления,
// оформляемая покупка, баллы, купоны, профиль. Набор ключей дедупликации
// уведомлений лежит в отдельной таблице.
package repository

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/sethvargo/go-retry"

	"github.com/RyanFidelis/soccergear-storefront/internal/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Имена документов в пределах одного namespace.
const (
	docCart          = "cart"
	docFavorites     = "favorites"
	docNotifications = "notifications"
	docCheckout      = "checkout"
	docPoints        = "points"
	docCoupons       = "coupons"
	docProfile       = "profile"
	docPromo         = "promo"
)

// PostgresRepository предоставляет доступ к хранилищу состояния витрины.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository создаёт новый репозиторий и инициализирует схему БД через миграции.
func NewPostgresRepository(dsn string) (*PostgresRepository, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	r := &PostgresRepository{pool: pool}

	if err := r.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return r, nil
}

func (r *PostgresRepository) runMigrations(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(r.pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

// withRetry повторяет операцию при временных ошибках БД: сериализация,
// дедлоки и обрывы соединения. Прочие ошибки возвращаются сразу.
func (r *PostgresRepository) withRetry(ctx context.Context, fn func(context.Context) error) error {
	backoff := retry.WithMaxRetries(3, retry.NewFibonacci(1*time.Second))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		if isTransient(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

func isTransient(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected
	}

	return strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "broken pipe") ||
		strings.Contains(err.Error(), "connection reset by peer")
}

// Close закрывает пул соединений с БД.
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// getDocument читает документ в dst. Повреждённый JSON трактуется как
// отсутствие документа: страница никогда не падает из-за битых данных.
func (r *PostgresRepository) getDocument(ctx context.Context, ns, name string, dst any) (bool, error) {
	var raw []byte

	err := r.withRetry(ctx, func(ctx context.Context) error {
		return r.pool.QueryRow(ctx,
			`SELECT value FROM documents WHERE namespace = $1 AND name = $2`,
			ns, name,
		).Scan(&raw)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("get document %s/%s: %w", ns, name, err)
	}

	return decodeDocument(raw, dst), nil
}

// decodeDocument разбирает сырой документ в dst. Повреждённый JSON
// трактуется как отсутствие документа: страница никогда не падает
// из-за битых данных.
func decodeDocument(raw []byte, dst any) bool {
	return json.Unmarshal(raw, dst) == nil
}

func (r *PostgresRepository) putDocument(ctx context.Context, ns, name string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal document %s/%s: %w", ns, name, err)
	}

	err = r.withRetry(ctx, func(ctx context.Context) error {
		_, execErr := r.pool.Exec(ctx,
			`INSERT INTO documents (namespace, name, value, updated_at) VALUES ($1, $2, $3, now())
			 ON CONFLICT (namespace, name) DO UPDATE SET value = $3, updated_at = now()`,
			ns, name, raw,
		)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("put document %s/%s: %w", ns, name, err)
	}
	return nil
}

func (r *PostgresRepository) deleteDocument(ctx context.Context, ns, name string) error {
	err := r.withRetry(ctx, func(ctx context.Context) error {
		_, execErr := r.pool.Exec(ctx,
			`DELETE FROM documents WHERE namespace = $1 AND name = $2`,
			ns, name,
		)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("delete document %s/%s: %w", ns, name, err)
	}
	return nil
}

// Cart возвращает корзину namespace; отсутствие документа — пустая корзина.
func (r *PostgresRepository) Cart(ctx context.Context, ns string) ([]model.CartItem, error) {
	var items []model.CartItem
	if _, err := r.getDocument(ctx, ns, docCart, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// SaveCart сохраняет корзину целиком.
func (r *PostgresRepository) SaveCart(ctx context.Context, ns string, items []model.CartItem) error {
	return r.putDocument(ctx, ns, docCart, items)
}

// DeleteCart удаляет корзину namespace.
func (r *PostgresRepository) DeleteCart(ctx context.Context, ns string) error {
	return r.deleteDocument(ctx, ns, docCart)
}

// Favorites возвращает избранное namespace.
func (r *PostgresRepository) Favorites(ctx context.Context, ns string) ([]model.Favorite, error) {
	var favs []model.Favorite
	if _, err := r.getDocument(ctx, ns, docFavorites, &favs); err != nil {
		return nil, err
	}
	return favs, nil
}

// SaveFavorites сохраняет избранное целиком.
func (r *PostgresRepository) SaveFavorites(ctx context.Context, ns string, favs []model.Favorite) error {
	return r.putDocument(ctx, ns, docFavorites, favs)
}

// Notifications возвращает уведомления namespace, новые в начале.
func (r *PostgresRepository) Notifications(ctx context.Context, ns string) ([]model.Notification, error) {
	var list []model.Notification
	if _, err := r.getDocument(ctx, ns, docNotifications, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// SaveNotifications сохраняет список уведомлений целиком.
func (r *PostgresRepository) SaveNotifications(ctx context.Context, ns string, list []model.Notification) error {
	return r.putDocument(ctx, ns, docNotifications, list)
}

// AppendNotification добавляет уведомление в начало списка без участия
// ключей дедупликации (промо-уведомления и ручные добавления).
func (r *PostgresRepository) AppendNotification(ctx context.Context, ns string, n model.Notification) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := prependNotificationTx(ctx, tx, ns, n); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// AppendNotificationIfNew атомарно регистрирует ключ дедупликации и добавляет
// уведомление, только если такой ключ ещё не встречался. Возвращает признак
// того, что уведомление было добавлено. Параллельные опросы, увидевшие один
// и тот же переход статуса, добавят ровно одно уведомление.
func (r *PostgresRepository) AppendNotificationIfNew(ctx context.Context, ns, key string, n model.Notification) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	cmdTag, err := tx.Exec(ctx,
		`INSERT INTO notified_events (namespace, event_key) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		ns, key,
	)
	if err != nil {
		return false, fmt.Errorf("insert notified event: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return false, nil
	}

	if err := prependNotificationTx(ctx, tx, ns, n); err != nil {
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit tx: %w", err)
	}
	return true, nil
}

// prependNotificationTx читает список уведомлений под блокировкой строки
// и записывает его обратно с новым уведомлением в начале.
func prependNotificationTx(ctx context.Context, tx pgx.Tx, ns string, n model.Notification) error {
	var raw []byte
	err := tx.QueryRow(ctx,
		`SELECT value FROM documents WHERE namespace = $1 AND name = $2 FOR UPDATE`,
		ns, docNotifications,
	).Scan(&raw)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("lock notifications: %w", err)
	}

	var list []model.Notification
	if len(raw) > 0 && !decodeDocument(raw, &list) {
		// Битый документ трактуем как пустой список.
		list = nil
	}

	list = append([]model.Notification{n}, list...)

	updated, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("marshal notifications: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO documents (namespace, name, value, updated_at) VALUES ($1, $2, $3, now())
		 ON CONFLICT (namespace, name) DO UPDATE SET value = $3, updated_at = now()`,
		ns, docNotifications, updated,
	)
	if err != nil {
		return fmt.Errorf("save notifications: %w", err)
	}
	return nil
}

// Checkout возвращает подготовленную покупку namespace, если она есть.
func (r *PostgresRepository) Checkout(ctx context.Context, ns string) (*model.Checkout, bool, error) {
	var co model.Checkout
	found, err := r.getDocument(ctx, ns, docCheckout, &co)
	if err != nil || !found {
		return nil, false, err
	}
	return &co, true, nil
}

// SaveCheckout сохраняет подготовленную покупку.
func (r *PostgresRepository) SaveCheckout(ctx context.Context, ns string, co *model.Checkout) error {
	return r.putDocument(ctx, ns, docCheckout, co)
}

// DeleteCheckout удаляет подготовленную покупку.
func (r *PostgresRepository) DeleteCheckout(ctx context.Context, ns string) error {
	return r.deleteDocument(ctx, ns, docCheckout)
}

// Points возвращает счёт бонусных баллов namespace.
func (r *PostgresRepository) Points(ctx context.Context, ns string) (model.PointsAccount, error) {
	var acc model.PointsAccount
	if _, err := r.getDocument(ctx, ns, docPoints, &acc); err != nil {
		return model.PointsAccount{}, err
	}
	return acc, nil
}

// SavePoints сохраняет счёт бонусных баллов.
func (r *PostgresRepository) SavePoints(ctx context.Context, ns string, acc model.PointsAccount) error {
	return r.putDocument(ctx, ns, docPoints, acc)
}

// Coupons возвращает купоны namespace.
func (r *PostgresRepository) Coupons(ctx context.Context, ns string) ([]model.Coupon, error) {
	var coupons []model.Coupon
	if _, err := r.getDocument(ctx, ns, docCoupons, &coupons); err != nil {
		return nil, err
	}
	return coupons, nil
}

// SaveCoupons сохраняет купоны целиком.
func (r *PostgresRepository) SaveCoupons(ctx context.Context, ns string, coupons []model.Coupon) error {
	return r.putDocument(ctx, ns, docCoupons, coupons)
}

// Profile возвращает зеркальный профиль пользователя namespace.
func (r *PostgresRepository) Profile(ctx context.Context, ns string) (*model.User, bool, error) {
	var u model.User
	found, err := r.getDocument(ctx, ns, docProfile, &u)
	if err != nil || !found {
		return nil, false, err
	}
	return &u, true, nil
}

// SaveProfile сохраняет зеркальный профиль.
func (r *PostgresRepository) SaveProfile(ctx context.Context, ns string, u *model.User) error {
	return r.putDocument(ctx, ns, docProfile, u)
}

// UserNamespaces возвращает все namespace с сохранённым профилем —
// их заказы опрашивает фоновый процесс уведомлений.
func (r *PostgresRepository) UserNamespaces(ctx context.Context) ([]string, error) {
	var namespaces []string

	err := r.withRetry(ctx, func(ctx context.Context) error {
		rows, qErr := r.pool.Query(ctx,
			`SELECT namespace FROM documents WHERE name = $1 ORDER BY namespace`,
			docProfile,
		)
		if qErr != nil {
			return qErr
		}
		defer rows.Close()

		namespaces = namespaces[:0]
		for rows.Next() {
			var ns string
			if sErr := rows.Scan(&ns); sErr != nil {
				return sErr
			}
			namespaces = append(namespaces, ns)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("select namespaces: %w", err)
	}

	return namespaces, nil
}

type promoMark struct {
	SentAt time.Time `json:"sentAt"`
}

// PromoSentAt возвращает момент последней промо-рассылки для namespace.
func (r *PostgresRepository) PromoSentAt(ctx context.Context, ns string) (time.Time, bool, error) {
	var mark promoMark
	found, err := r.getDocument(ctx, ns, docPromo, &mark)
	if err != nil || !found {
		return time.Time{}, false, err
	}
	return mark.SentAt, true, nil
}

// SetPromoSentAt фиксирует момент промо-рассылки для namespace.
func (r *PostgresRepository) SetPromoSentAt(ctx context.Context, ns string, t time.Time) error {
	return r.putDocument(ctx, ns, docPromo, promoMark{SentAt: t})
}
