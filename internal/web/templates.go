package web

import "html/template"

var billsPageTmpl = template.Must(template.New("bills").Parse(`<!DOCTYPE html>
<html lang="fr">
<head><meta charset="utf-8"><title>Billed - Mes notes de frais</title></head>
<body>
  <h1>Mes notes de frais</h1>
  {{if .Flash}}<p class="flash" role="alert">{{.Flash}}</p>{{end}}
  <a href="/employee/bill/new" data-testid="btn-new-bill">Nouvelle note de frais</a>
  <table>
    <thead>
      <tr><th>Type</th><th>Nom</th><th>Date</th><th>Montant</th><th>Statut</th><th></th></tr>
    </thead>
    <tbody data-testid="tbody">
      {{range .Bills}}
      <tr>
        <td>{{.Type}}</td>
        <td>{{.Name}}</td>
        <td>{{.Date}}</td>
        <td>{{.Amount}} €</td>
        <td>{{.Status}}</td>
        <td>
          {{if .FileURL}}<a href="/employee/bills/receipt?url={{.FileURL}}" data-testid="icon-eye">Justificatif</a>{{end}}
        </td>
      </tr>
      {{end}}
    </tbody>
  </table>
  {{if .Overlay}}
  <div class="modal" data-testid="modale-file">
    <h2>Justificatif</h2>
    <img src="{{.Overlay}}" alt="Justificatif de la note de frais">
    <a href="/employee/bills">Fermer</a>
  </div>
  {{end}}
</body>
</html>
`))

var newBillPageTmpl = template.Must(template.New("newbill").Parse(`<!DOCTYPE html>
<html lang="fr">
<head><meta charset="utf-8"><title>Billed - Envoyer une note de frais</title></head>
<body>
  <h1>Envoyer une note de frais</h1>
  {{if .Flash}}<p class="flash" role="alert">{{.Flash}}</p>{{end}}
  <form method="post" action="/employee/bill/new/file" enctype="multipart/form-data">
    <label for="file">Justificatif{{if .FileName}} ({{.FileName}}){{end}}</label>
    <input type="file" name="file" data-testid="file" required>
    <button type="submit">Joindre</button>
  </form>
  <form method="post" action="/employee/bill/new" data-testid="form-new-bill">
    <label for="expense-type">Type de dépense</label>
    <select name="expense-type" data-testid="expense-type" required>
      <option>Transports</option>
      <option>Restaurants et bars</option>
      <option>Hôtel et logement</option>
      <option>Services en ligne</option>
      <option>IT et électronique</option>
      <option>Equipement et matériel</option>
      <option>Fournitures de bureau</option>
    </select>
    <label for="expense-name">Nom de la dépense</label>
    <input type="text" name="expense-name" data-testid="expense-name" required>
    <label for="datepicker">Date</label>
    <input type="date" name="datepicker" data-testid="datepicker" required>
    <label for="amount">Montant TTC</label>
    <input type="number" name="amount" data-testid="amount" required>
    <label for="vat">TVA</label>
    <input type="number" name="vat" data-testid="vat">
    <input type="number" name="pct" data-testid="pct" placeholder="20">
    <label for="commentary">Commentaire</label>
    <textarea name="commentary" data-testid="commentary"></textarea>
    <button type="submit" id="btn-send-bill">Envoyer</button>
  </form>
</body>
</html>
`))
