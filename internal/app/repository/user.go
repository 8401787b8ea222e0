package repository

import (
	"renovation/internal/app/ds"
	"renovation/internal/app/role"
)

func (r *Repository) GetUserByID(id uint) (*ds.User, error) {
	var user ds.User
	err := r.db.First(&user, id).Error
	if err != nil {
		return nil, notFound(err, "user")
	}
	return &user, nil
}

func (r *Repository) GetUserByLogin(login string) (*ds.User, error) {
	var user ds.User
	err := r.db.Where("login = ?", login).First(&user).Error
	if err != nil {
		return nil, notFound(err, "user")
	}
	return &user, nil
}

func (r *Repository) UserExistsByLogin(login string) (bool, error) {
	var count int64
	err := r.db.Model(&ds.User{}).Where("login = ?", login).Count(&count).Error
	return count > 0, err
}

func (r *Repository) CreateUser(login, passwordHash, fullName, email string, userRole role.Role) (*ds.User, error) {
	user := ds.User{
		Login:    login,
		Password: passwordHash,
		FullName: fullName,
		Email:    email,
		Role:     userRole,
	}

	err := r.db.Create(&user).Error
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// UpdateUser changes only the non-nil fields.
func (r *Repository) UpdateUser(id uint, fullName, email, passwordHash *string) error {
	updates := map[string]interface{}{}
	if fullName != nil {
		updates["full_name"] = *fullName
	}
	if email != nil {
		updates["email"] = *email
	}
	if passwordHash != nil {
		updates["password"] = *passwordHash
	}
	if len(updates) == 0 {
		return nil
	}

	result := r.db.Model(&ds.User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return missing("user")
	}
	return nil
}

func (r *Repository) ListUsers() ([]ds.User, error) {
	var users []ds.User
	err := r.db.Order("full_name").Find(&users).Error
	return users, err
}
