package utils

import (
	"fmt"
	"math/rand"

	"github.com/mozillazg/go-pinyin"
	"github.com/sysu-ecnc-dev/worktime-manager/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "勇", "霞", "飞", "玲",
	"超", "华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌",
	"庆", "建", "丹", "彬", "凤", "旭", "宁", "乐", "成", "欣",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

var digits = "0123456789"

func GenerateUsernameFromChineseName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	username := ""

	for _, pinyin := range pinyinArray {
		length := rand.Intn(len(pinyin)) + 1
		username += pinyin[:length]
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

func GenerateRandomUser(password string, weeklyQuota float64) (*domain.User, error) {
	fullName := GenerateRandomChineseName()
	username := GenerateUsernameFromChineseName(fullName)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(passwordHash),
		FullName:     fullName,
		Email:        username + "@example.com",
		Role:         domain.RoleEmployee,
		WeeklyQuota:  weeklyQuota,
		IsActive:     true,
	}

	return user, nil
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	random_password := make([]rune, length)
	for i := range random_password {
		random_password[i] = letters[rand.Intn(len(letters))]
	}
	return string(random_password)
}

// 随机生成一个每周安排：周一到周五上班，时间段在整点附近浮动
func GenerateRandomScheduleTemplate() *domain.ScheduleTemplate {
	st := &domain.ScheduleTemplate{
		Name:        fmt.Sprintf("班表模板%03d", rand.Intn(1000)),
		Description: "随机生成的测试模板",
		Pattern:     make(map[int32]domain.DayPattern),
	}

	for weekday := int32(0); weekday <= 6; weekday++ {
		// 0 = 周日，6 = 周六
		if weekday == 0 || weekday == 6 {
			st.Pattern[weekday] = domain.DayPattern{IsWorking: false, TimeBlocks: []domain.TimeBlock{}}
			continue
		}

		startHour := 8 + rand.Intn(2)
		endHour := 17 + rand.Intn(2)
		st.Pattern[weekday] = domain.DayPattern{
			IsWorking: true,
			TimeBlocks: []domain.TimeBlock{
				{Start: fmt.Sprintf("%02d:00", startHour), End: "12:00"},
				{Start: "13:00", End: fmt.Sprintf("%02d:00", endHour)},
			},
		}
	}

	return st
}
