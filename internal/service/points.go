package service

import (
	"context"

	"github.com/RyanFidelis/soccergear-storefront/internal/backend"
	"github.com/RyanFidelis/soccergear-storefront/internal/model"
)

// rewards — каталог призов программы SoccerPoints.
var rewards = []model.Reward{
	{ID: 1, Nome: "Chaveiro SoccerGear", Custo: 100, Tag: "Resgate rápido"},
	{ID: 2, Nome: "Boné exclusivo", Custo: 500},
	{ID: 3, Nome: "Camisa oficial", Custo: 1000, Tag: "Mais desejado"},
}

// Rewards возвращает каталог призов, доступных за бонусные баллы.
func (s *Service) Rewards() []model.Reward {
	out := make([]model.Reward, len(rewards))
	copy(out, rewards)
	return out
}

// Points возвращает счёт бонусных баллов пользователя. Баланс берётся из
// профиля (авторитетен бэкенд), история операций — из локального документа.
func (s *Service) Points(ctx context.Context, userID int64) (model.PointsAccount, error) {
	acc, err := s.repo.Points(ctx, UserNamespace(userID))
	if err != nil {
		return model.PointsAccount{}, err
	}

	u, err := s.Profile(ctx, userID)
	if err != nil {
		return model.PointsAccount{}, err
	}

	acc.Saldo = u.Pontos
	return acc, nil
}

// Redeem списывает баллы за приз. Списание сначала подтверждается бэкендом;
// локальное состояние меняется только после его ответа. Недоступность бэкенда
// оставляет баланс нетронутым.
func (s *Service) Redeem(ctx context.Context, userID, rewardID int64) (model.PointsAccount, error) {
	var reward *model.Reward
	for i := range rewards {
		if rewards[i].ID == rewardID {
			reward = &rewards[i]
			break
		}
	}
	if reward == nil {
		return model.PointsAccount{}, ErrRewardNotFound
	}

	u, err := s.Profile(ctx, userID)
	if err != nil {
		return model.PointsAccount{}, err
	}
	if u.Pontos < reward.Custo {
		return model.PointsAccount{}, ErrInsufficientPoints
	}

	newBalance := u.Pontos - reward.Custo
	updated, err := s.backend.UpdateUser(ctx, userID, backend.UserUpdate{Pontos: &newBalance})
	if err != nil {
		return model.PointsAccount{}, err
	}

	ns := UserNamespace(userID)
	if err := s.repo.SaveProfile(ctx, ns, updated); err != nil {
		return model.PointsAccount{}, err
	}

	acc, err := s.repo.Points(ctx, ns)
	if err != nil {
		return model.PointsAccount{}, err
	}
	acc.Saldo = updated.Pontos
	acc.Historico = append(acc.Historico, model.PointsEntry{
		Tipo:  "resgate",
		Valor: -reward.Custo,
		Item:  reward.Nome,
		Data:  s.now(),
	})
	if err := s.repo.SavePoints(ctx, ns, acc); err != nil {
		return model.PointsAccount{}, err
	}

	return acc, nil
}

// awardPoints начисляет баллы пользователю после покупки. Начисление — лучший
// случай: его сбой не отменяет уже принятый заказ.
func (s *Service) awardPoints(ctx context.Context, userID, valor int64, item string) {
	u, err := s.Profile(ctx, userID)
	if err != nil {
		return
	}

	newBalance := u.Pontos + valor
	updated, err := s.backend.UpdateUser(ctx, userID, backend.UserUpdate{Pontos: &newBalance})
	if err != nil {
		return
	}

	ns := UserNamespace(userID)
	_ = s.repo.SaveProfile(ctx, ns, updated)

	acc, err := s.repo.Points(ctx, ns)
	if err != nil {
		return
	}
	acc.Saldo = updated.Pontos
	acc.Historico = append(acc.Historico, model.PointsEntry{
		Tipo:  "compra",
		Valor: valor,
		Item:  item,
		Data:  s.now(),
	})
	_ = s.repo.SavePoints(ctx, ns, acc)
}
