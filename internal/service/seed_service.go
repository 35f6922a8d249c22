package service

import (
	"context"
	"fmt"

	"github.com/ignatzorin/turismo/internal/logger"
	"github.com/ignatzorin/turismo/internal/models"
)

// ActivitySeeder описывает то, что SeedService нужно от хранилища активностей.
type ActivitySeeder interface {
	Count(ctx context.Context) (int, error)
	CreateBatch(ctx context.Context, activities []models.Activity) error
}

// SeedService наполняет пустой каталог демонстрационными активностями.
type SeedService struct {
	activities ActivitySeeder
}

// NewSeedService создаёт новый сервис для генерации данных.
func NewSeedService(activities ActivitySeeder) *SeedService {
	return &SeedService{activities: activities}
}

// SeedDemoActivities вставляет демо-каталог, если в базе ещё нет ни одной активности.
// Возвращает количество вставленных записей.
func (s *SeedService) SeedDemoActivities(ctx context.Context) (int, error) {
	count, err := s.activities.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed service: %w", err)
	}
	if count > 0 {
		logger.WithContext(ctx).WithField("activities", count).Debug("seed service: каталог не пуст, пропускаем")
		return 0, nil
	}

	demo := DemoActivities()
	if err := s.activities.CreateBatch(ctx, demo); err != nil {
		return 0, fmt.Errorf("seed service: failed to create activities: %w", err)
	}

	logger.WithContext(ctx).WithField("activities", len(demo)).Info("seed service: демо-каталог создан")
	return len(demo), nil
}

// DemoActivities возвращает демонстрационный каталог.
func DemoActivities() []models.Activity {
	return []models.Activity{
		{
			Name:        "Сплав по реке Катунь",
			Description: "Однодневный рафтинг по порогам третьей категории с инструктором. Снаряжение и обед на берегу включены.",
			Location:    "Республика Алтай",
		},
		{
			Name:        "Восхождение на Эльбрус",
			Description: "Недельная программа с акклиматизацией и выходом на западную вершину. Нужна базовая физическая подготовка.",
			Location:    "Кабардино-Балкария",
		},
		{
			Name:        "Разводные мосты на катере",
			Description: "Ночная прогулка по Неве и каналам с видом на развод Дворцового и Троицкого мостов.",
			Location:    "Санкт-Петербург",
		},
		{
			Name:        "Треккинг к Кольцу Черкесских гор",
			Description: "Пеший маршрут средней сложности с панорамой на Главный Кавказский хребет.",
			Location:    "Кисловодск",
		},
		{
			Name:        "Байкальский лёд",
			Description: "Экскурсия на внедорожнике по прозрачному льду к гротам острова Ольхон.",
			Location:    "Иркутская область",
		},
		{
			Name:        "Долина гейзеров",
			Description: "Вертолётная экскурсия в заповедник с посещением кальдеры вулкана Узон.",
			Location:    "Камчатка",
		},
		{
			Name:        "Гастротур по Казани",
			Description: "Пешая прогулка по Старо-Татарской слободе с дегустацией эчпочмаков и чак-чака.",
			Location:    "Казань",
		},
		{
			Name:        "Кижи и Валаам",
			Description: "Двухдневный круиз по Онежскому и Ладожскому озёрам с посещением деревянного зодчества.",
			Location:    "Карелия",
		},
	}
}
