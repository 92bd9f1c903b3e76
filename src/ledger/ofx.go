package ledger

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"girlmath-server/src/models"
	"girlmath-server/src/util"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"
)

// ImportResult summarizes an ImportOFX run.
type ImportResult struct {
	Imported int
	// Skipped counts lines already imported by an earlier run.
	Skipped int
	Balance decimal.Decimal
}

type statementLine struct {
	account string
	txn     ofxgo.Transaction
}

// ImportOFX records every bank and credit card statement line in r as a
// transaction for userID. OFX debits are negative, so the amount is negated.
// The file is applied in one store transaction, and lines seen before (by
// account and FITID) are skipped, so importing overlapping statements is safe.
func (s *Service) ImportOFX(ctx context.Context, userID int64, r io.Reader) (*ImportResult, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}
	resp, err := ofxgo.ParseResponse(strings.NewReader(strings.TrimLeft(string(content), " \t\r\n")))
	if err != nil {
		return nil, models.Validationf("Could not parse OFX file: %v", err)
	}

	var lines []statementLine
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankTranList != nil {
			for _, t := range stmt.BankTranList.Transactions {
				lines = append(lines, statementLine{account: string(stmt.BankAcctFrom.AcctID), txn: t})
			}
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.BankTranList != nil {
			for _, t := range stmt.BankTranList.Transactions {
				lines = append(lines, statementLine{account: string(stmt.CCAcctFrom.AcctID), txn: t})
			}
		}
	}

	txns := make([]models.Transaction, 0, len(lines))
	for _, line := range lines {
		txn, err := fromOFX(userID, line)
		if err != nil {
			return nil, err
		}
		txns = append(txns, txn)
	}

	imported, balance, err := s.store.ImportTransactions(ctx, userID, txns)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.NotFoundf("User not found.")
		}
		return nil, fmt.Errorf("failed to import transactions: %w", err)
	}
	log.Printf("INFO: Imported %d of %d statement lines for user %d, balance %s", imported, len(txns), userID, balance)
	return &ImportResult{Imported: imported, Skipped: len(txns) - imported, Balance: balance}, nil
}

func fromOFX(userID int64, line statementLine) (models.Transaction, error) {
	amount, err := util.AmountFromRat(&line.txn.TrnAmt.Rat)
	if err != nil {
		return models.Transaction{}, models.Validationf("Invalid amount %s in transaction %s.",
			line.txn.TrnAmt.String(), line.txn.FiTID)
	}
	txn := models.Transaction{
		UserID:      userID,
		Description: ofxDescription(line.txn),
		Amount:      amount.Neg(),
		CreatedAt:   line.txn.DtPosted.Time.UTC(),
	}
	txn.ImportKey = importKey(line, txn)
	return txn, nil
}

// importKey is derived from the account and FITID. Lines without a FITID fall
// back to date, amount and description.
func importKey(line statementLine, txn models.Transaction) string {
	data := fmt.Sprintf("%s:fitid:%s", line.account, line.txn.FiTID)
	if strings.TrimSpace(string(line.txn.FiTID)) == "" {
		data = fmt.Sprintf("%s:%s:%s:%s", line.account, txn.CreatedAt.Format("2006-01-02"), txn.Amount, txn.Description)
	}
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

func ofxDescription(line ofxgo.Transaction) string {
	var desc string
	switch {
	case line.Payee != nil && strings.TrimSpace(string(line.Payee.Name)) != "":
		desc = string(line.Payee.Name)
	case strings.TrimSpace(string(line.Name)) != "":
		desc = string(line.Name)
	case strings.TrimSpace(string(line.Memo)) != "":
		desc = string(line.Memo)
	default:
		desc = "Imported " + line.TrnType.String()
	}
	desc = strings.ToValidUTF8(strings.ReplaceAll(desc, "\x00", ""), "\uFFFD")
	return util.Truncate(strings.TrimSpace(desc), util.MaxDescriptionLength)
}
