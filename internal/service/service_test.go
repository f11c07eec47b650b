package service

import (
	"time"

	"second-chance/internal/store"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

func restoreGlobals() {
	bcryptGenerateFromPassword = bcrypt.GenerateFromPassword
	bcryptCompareHashAndPassword = bcrypt.CompareHashAndPassword
	timeNow = time.Now
	newTokenID = uuid.NewString
	parseWithClaims = jwt.ParseWithClaims
	getAccountByEmail = store.GetAccountByEmail
	createAccount = store.CreateAccount
	updateAccount = store.UpdateAccount
	newAccountID = uuid.NewString
	listItems = store.ListItems
	createItem = store.CreateItem
	getItemByID = store.GetItemByID
	updateItem = store.UpdateItem
	deleteItem = store.DeleteItem
}
