package export

import (
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	"github.com/aclindsa/ofxgo"
	"github.com/google/uuid"

	"github.com/cleared-dev/stmtconv/internal/model"
)

// OFX field limits.
const (
	maxNameLen = 32
	maxMemoLen = 255
)

// Supported OFX versions.
const (
	OFXVersion102 = "102"
	OFXVersion220 = "220"
)

// StatementInfo carries the statement-level OFX fields.
type StatementInfo struct {
	Account    model.Account
	Version    string    // OFXVersion220 when empty
	ServerTime time.Time // DTSERVER; now when zero
}

// WriteOFX writes records as a single bank statement.
func WriteOFX(w io.Writer, records []model.Record, info StatementInfo) error {
	resp, err := BuildOFX(records, info)
	if err != nil {
		return err
	}
	buf, err := resp.Marshal()
	if err != nil {
		return fmt.Errorf("marshaling OFX: %w", err)
	}
	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("writing OFX: %w", err)
	}
	return nil
}

// BuildOFX assembles the OFX response for records without serializing it.
func BuildOFX(records []model.Record, info StatementInfo) (*ofxgo.Response, error) {
	version := info.Version
	if version == "" {
		version = OFXVersion220
	}
	ver, err := ofxgo.NewOfxVersion(version)
	if err != nil {
		return nil, fmt.Errorf("OFX version: %w", err)
	}

	acct := info.Account
	if acct.ID == "" {
		return nil, fmt.Errorf("OFX requires an account id")
	}
	if acct.InstitutionID == "" {
		return nil, fmt.Errorf("OFX requires an institution id")
	}
	curDef, err := ofxgo.NewCurrSymbol(acct.Currency)
	if err != nil {
		return nil, fmt.Errorf("currency %q: %w", acct.Currency, err)
	}
	acctType, err := ofxgo.NewAcctType(string(acct.Type))
	if err != nil {
		return nil, fmt.Errorf("account type %q: %w", acct.Type, err)
	}

	serverTime := info.ServerTime
	if serverTime.IsZero() {
		serverTime = time.Now().UTC()
	}
	start, end := dateRange(records, serverTime)

	txns := make([]ofxgo.Transaction, 0, len(records))
	for _, r := range records {
		txn, err := transaction(r)
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", r.ID, err)
		}
		txns = append(txns, txn)
	}

	stmt := &ofxgo.StatementResponse{
		TrnUID: ofxgo.UID(uuid.NewSHA1(uuid.NameSpaceOID, []byte(acct.ID+"|"+start.Format(dateFormat)+"|"+end.Format(dateFormat))).String()),
		Status: ofxgo.Status{
			Code:     0,
			Severity: "INFO",
		},
		CurDef: *curDef,
		BankAcctFrom: ofxgo.BankAcct{
			BankID:   ofxgo.String(acct.InstitutionID),
			AcctID:   ofxgo.String(acct.ID),
			AcctType: acctType,
		},
		BankTranList: &ofxgo.TransactionList{
			DtStart:      ofxgo.Date{Time: start},
			DtEnd:        ofxgo.Date{Time: end},
			Transactions: txns,
		},
		DtAsOf: ofxgo.Date{Time: end},
	}

	return &ofxgo.Response{
		Version: ver,
		Signon: ofxgo.SignonResponse{
			Status: ofxgo.Status{
				Code:     0,
				Severity: "INFO",
			},
			DtServer: ofxgo.Date{Time: serverTime},
			Language: "ENG",
			Org:      ofxgo.String(acct.InstitutionID),
		},
		Bank: []ofxgo.Message{stmt},
	}, nil
}

func transaction(r model.Record) (ofxgo.Transaction, error) {
	txn := ofxgo.Transaction{
		DtPosted: ofxgo.Date{Time: r.Date},
		FiTID:    ofxgo.String(r.ID),
		CheckNum: ofxgo.String(r.CheckNumber),
		RefNum:   ofxgo.String(r.RefNumber),
		Name:     ofxgo.String(truncate(r.Payee, maxNameLen)),
		Memo:     ofxgo.String(truncate(r.Memo, maxMemoLen)),
	}
	if !r.ValueDate.IsZero() {
		txn.DtUser = &ofxgo.Date{Time: r.ValueDate}
	}
	if _, ok := txn.TrnAmt.SetString(r.Amount.String()); !ok {
		return txn, fmt.Errorf("amount %s not representable", r.Amount)
	}

	switch r.Type {
	case model.TypeDebit:
		txn.TrnType = ofxgo.TrnTypeDebit
	case model.TypeInterest:
		txn.TrnType = ofxgo.TrnTypeInt
	case model.TypeFee:
		txn.TrnType = ofxgo.TrnTypeFee
	case model.TypeTransfer:
		txn.TrnType = ofxgo.TrnTypeXfer
	case model.TypeATMWithdrawal:
		txn.TrnType = ofxgo.TrnTypeATM
	case model.TypePOSPayment:
		txn.TrnType = ofxgo.TrnTypePOS
	case model.TypeDirectDebit:
		txn.TrnType = ofxgo.TrnTypeDirectDebit
	case model.TypeRecurringPayment:
		txn.TrnType = ofxgo.TrnTypeRepeatPmt
	case model.TypeOther:
		txn.TrnType = ofxgo.TrnTypeOther
	default:
		return txn, fmt.Errorf("unknown transaction type %q", r.Type)
	}
	return txn, nil
}

// dateRange returns the earliest and latest record dates, or fallback twice
// when there are no records.
func dateRange(records []model.Record, fallback time.Time) (time.Time, time.Time) {
	if len(records) == 0 {
		return fallback, fallback
	}
	start, end := records[0].Date, records[0].Date
	for _, r := range records[1:] {
		if r.Date.Before(start) {
			start = r.Date
		}
		if r.Date.After(end) {
			end = r.Date
		}
	}
	return start, end
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
