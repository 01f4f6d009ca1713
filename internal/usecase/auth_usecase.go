package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"agrimarket/internal/domain/model"
	repo "agrimarket/internal/repository"

	"github.com/sirupsen/logrus"
)

// usecaseがValidatorInterfaceに依存する約束
type AuthValidator interface {
	ValidateRegister(email string, password string, name string) error
	ValidateLogin(email string, password string) error
	ValidateProfile(name string, phone string) error
}

// 平文パスワードのハッシュ化と照合
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain string, hashed string) bool
}

// JWTを発行する約束
type TokenIssuer interface {
	Issue(user model.User, now time.Time) (token string, expiresAt time.Time, err error)
}

type UserDTO struct {
	ID         int64  `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	IsStaff    bool   `json:"is_staff"`
	IsApproved bool   `json:"is_approved"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Role     string
}

type RegisterOutput struct {
	User     UserDTO  `json:"user"`
	Messages []string `json:"messages"`
}

type LoginInput struct {
	Email    string
	Password string
}

type LoginOutput struct {
	User        UserDTO   `json:"user"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	Message     string    `json:"message"`
}

type ProfileInput struct {
	Name    string
	Phone   string
	Address string
}

type AuthUsecase struct {
	tx        repo.TransactionManager
	hasher    PasswordHasher
	issuer    TokenIssuer
	validator AuthValidator
	log       logrus.FieldLogger
}

func NewAuthUsecase(
	tx repo.TransactionManager,
	hasher PasswordHasher,
	issuer TokenIssuer,
	validator AuthValidator,
	log logrus.FieldLogger,
) *AuthUsecase {
	return &AuthUsecase{
		tx:        tx,
		hasher:    hasher,
		issuer:    issuer,
		validator: validator,
		log:       log,
	}
}

func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput) (RegisterOutput, error) {
	role := model.RoleFarmer
	if strings.TrimSpace(in.Role) != "" {
		r, err := model.ParseRole(in.Role)
		//adminは公開登録では作れない（CLIのcreate-adminのみ）
		if err != nil || r == model.RoleAdmin {
			return RegisterOutput{}, newError(ErrValidation, "invalid role")
		}
		role = r
	}

	user, err := u.createUser(ctx, in.Email, in.Password, in.Name, role)
	if err != nil {
		return RegisterOutput{}, err
	}

	msgs := []string{"Registration successful! Please login."}
	if user.Role == model.RoleSeller {
		msgs = append(msgs, "Your seller account is pending admin approval.")
	}
	return RegisterOutput{User: toUserDTO(user), Messages: msgs}, nil
}

// CreateAdmin は運用者がCLIから管理者を作るためのもの。
func (u *AuthUsecase) CreateAdmin(ctx context.Context, email, password, name string) (UserDTO, error) {
	user, err := u.createUser(ctx, email, password, name, model.RoleAdmin)
	if err != nil {
		return UserDTO{}, err
	}
	return toUserDTO(user), nil
}

func (u *AuthUsecase) createUser(ctx context.Context, rawEmail, password, rawName string, role model.Role) (model.User, error) {
	email := strings.ToLower(strings.TrimSpace(rawEmail))
	name := strings.TrimSpace(rawName)

	//入力検証（validatorに寄せる）
	if err := u.validator.ValidateRegister(email, password, name); err != nil {
		return model.User{}, newError(ErrValidation, err.Error())
	}

	//パスワードは必ずハッシュ化して保存（平文保存しない）
	hash, err := u.hasher.Hash(password)
	if err != nil {
		return model.User{}, newError(ErrInternal, "internal error")
	}

	user := model.NewUser(email, hash, name, role, time.Now())

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Users().Create(ctx, &user); err != nil {
			if errors.Is(err, repo.ErrDuplicate) {
				return newError(ErrConflict, "email already used")
			}
			return dbError(err)
		}
		return nil
	})
	if err != nil {
		return model.User{}, err
	}

	u.log.WithFields(logrus.Fields{"user_id": user.ID, "role": user.Role}).Info("user registered")
	return user, nil
}

func (u *AuthUsecase) Login(ctx context.Context, in LoginInput) (LoginOutput, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if err := u.validator.ValidateLogin(email, in.Password); err != nil {
		return LoginOutput{}, newError(ErrValidation, err.Error())
	}

	var user *model.User
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		found, err := r.Users().FindByEmail(ctx, email)
		if errors.Is(err, repo.ErrNotFound) {
			return newError(ErrUnauthorized, "Invalid email or password.")
		}
		if err != nil {
			return dbError(err)
		}
		user = found
		return nil
	})
	if err != nil {
		return LoginOutput{}, err
	}

	//パスワード照合（bcrypt）
	if !u.hasher.Verify(in.Password, user.PasswordHash) {
		return LoginOutput{}, newError(ErrUnauthorized, "Invalid email or password.")
	}

	//停止ユーザーはログイン不可
	if !user.IsActive {
		return LoginOutput{}, newError(ErrForbidden, "account is inactive")
	}
	//承認前のsellerはログイン不可
	if user.Role == model.RoleSeller && !user.IsApproved {
		return LoginOutput{}, newError(ErrForbidden, "Your seller account is pending approval.")
	}

	token, expiresAt, err := u.issuer.Issue(*user, time.Now())
	if err != nil {
		return LoginOutput{}, newError(ErrInternal, "internal error")
	}

	return LoginOutput{
		User:        toUserDTO(*user),
		AccessToken: token,
		ExpiresAt:   expiresAt,
		Message:     "Welcome back, " + user.Name + "!",
	}, nil
}

// Identity はDBから最新のロール・承認状態を読み込む。
func (u *AuthUsecase) Identity(ctx context.Context, userID int64) (model.Identity, error) {
	if userID <= 0 {
		return model.Identity{}, newError(ErrUnauthorized, "unauthorized")
	}

	var id model.Identity
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		user, err := r.Users().FindByID(ctx, userID)
		if errors.Is(err, repo.ErrNotFound) {
			return newError(ErrUnauthorized, "unauthorized")
		}
		if err != nil {
			return dbError(err)
		}
		if !user.IsActive {
			return newError(ErrUnauthorized, "unauthorized")
		}
		id = user.Identity()
		return nil
	})
	return id, err
}

func (u *AuthUsecase) Me(ctx context.Context, userID int64) (UserDTO, error) {
	var out UserDTO
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		user, err := r.Users().FindByID(ctx, userID)
		if errors.Is(err, repo.ErrNotFound) {
			return newError(ErrNotFound, "not found")
		}
		if err != nil {
			return dbError(err)
		}
		out = toUserDTO(*user)
		return nil
	})
	return out, err
}

// プロフィール（住所・電話は注文時の既定値になる）
func (u *AuthUsecase) UpdateProfile(ctx context.Context, userID int64, in ProfileInput) (UserDTO, error) {
	name := strings.TrimSpace(in.Name)
	phone := strings.TrimSpace(in.Phone)
	if err := u.validator.ValidateProfile(name, phone); err != nil {
		return UserDTO{}, newError(ErrValidation, err.Error())
	}

	var out UserDTO
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		user, err := r.Users().FindByID(ctx, userID)
		if errors.Is(err, repo.ErrNotFound) {
			return newError(ErrNotFound, "not found")
		}
		if err != nil {
			return dbError(err)
		}

		if name != "" {
			user.Name = name
		}
		user.Phone = phone
		user.Address = strings.TrimSpace(in.Address)
		user.UpdatedAt = time.Now()

		if err := r.Users().Update(ctx, user); err != nil {
			return dbError(err)
		}
		out = toUserDTO(*user)
		return nil
	})
	return out, err
}

// 承認待ちseller一覧（admin）
func (u *AuthUsecase) ListPendingSellers(ctx context.Context, actor model.Identity) ([]UserDTO, error) {
	if err := requireStaff(actor); err != nil {
		return []UserDTO{}, err
	}

	var outs []UserDTO
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		users, err := r.Users().ListPendingSellers(ctx)
		if err != nil {
			return dbError(err)
		}
		outs = make([]UserDTO, 0, len(users))
		for _, us := range users {
			outs = append(outs, toUserDTO(us))
		}
		return nil
	})
	if err != nil {
		return []UserDTO{}, err
	}
	return outs, nil
}

// seller承認（admin）
func (u *AuthUsecase) ApproveSeller(ctx context.Context, actor model.Identity, sellerID int64) (UserDTO, error) {
	if err := requireStaff(actor); err != nil {
		return UserDTO{}, err
	}
	if sellerID <= 0 {
		return UserDTO{}, newError(ErrValidation, "invalid id")
	}

	var out UserDTO
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		user, err := r.Users().FindByID(ctx, sellerID)
		if errors.Is(err, repo.ErrNotFound) {
			return newError(ErrNotFound, "not found")
		}
		if err != nil {
			return dbError(err)
		}
		if user.Role != model.RoleSeller {
			return newError(ErrValidation, "user is not a seller")
		}

		if !user.IsApproved {
			user.IsApproved = true
			user.UpdatedAt = time.Now()
			if err := r.Users().Update(ctx, user); err != nil {
				return dbError(err)
			}
			entry := model.NewAuditLog(actor.UserID, model.AuditActionApproveSeller, model.UserTarget(user.ID),
				"is_approved", false, true, time.Now())
			if err := r.AuditLogs().Record(ctx, entry); err != nil {
				return dbError(err)
			}
		}

		out = toUserDTO(*user)
		return nil
	})
	return out, err
}

// model.UserをAPI返却用DTOに変換。
func toUserDTO(u model.User) UserDTO {
	return UserDTO{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		Role:       string(u.Role),
		IsStaff:    u.IsStaff,
		IsApproved: u.IsApproved,
		Phone:      u.Phone,
		Address:    u.Address,
	}
}
